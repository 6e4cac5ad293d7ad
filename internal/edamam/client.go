// Package edamam provides a rate-limited client for the Edamam recipe
// search API.
package edamam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matsen/rcp/internal/recipe"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Edamam API base URL.
	BaseURL = "https://api.edamam.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerMinute matches the free-tier throttle.
	DefaultRequestsPerMinute = 10

	// Default pagination for Search.
	DefaultMaxResults = 30
	DefaultPerPage    = 10

	// searchPath is the recipe search endpoint.
	searchPath = "/search"

	// redacted replaces the app key in logged URLs.
	redacted = "REDACTED"

	// maxErrorBody bounds how much of an error body is kept in APIError.
	maxErrorBody = 512
)

// Client is a rate-limited HTTP client for the Edamam recipe search API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	appID      string
	appKey     string
	baseURL    string
	logger     *logrus.Entry
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCredentials sets the application ID and key sent with every request.
func WithCredentials(appID, appKey string) ClientOption {
	return func(c *Client) {
		c.appID = appID
		c.appKey = appKey
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the request rate. Use rate.Inf to disable limiting.
func WithRateLimit(limit rate.Limit) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, 1)
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *logrus.Entry) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Edamam client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(PerMinute(DefaultRequestsPerMinute), 1),
		baseURL:    BaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logrus.WithField("component", "edamam")
	}

	return c
}

// PerMinute converts a requests-per-minute budget to a rate.Limit.
// A non-positive budget disables limiting.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

// Page is one page of search results.
type Page struct {
	From    int
	To      int
	Count   int  // Total hits for the query
	More    bool // Whether the API reports further pages
	Recipes []recipe.Recipe
}

// searchURL builds the request URL for one page. The second return value
// is the same URL with the app key redacted, for logging.
func (c *Client) searchURL(query string, from, to int) (string, string, error) {
	u, err := url.Parse(c.baseURL + searchPath)
	if err != nil {
		return "", "", fmt.Errorf("parsing base URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	params.Set("from", strconv.Itoa(from))
	params.Set("to", strconv.Itoa(to))
	u.RawQuery = params.Encode()
	full := u.String()

	params.Set("app_key", redacted)
	u.RawQuery = params.Encode()
	return full, u.String(), nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, query string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := string(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Query:      query,
	}
}

// SearchPage fetches hits [from, to) for query.
func (c *Client) SearchPage(ctx context.Context, query string, from, to int) (*Page, error) {
	if c.appID == "" || c.appKey == "" {
		return nil, ErrMissingCredentials
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL, logURL, err := c.searchURL(query, from, to)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"url":    logURL,
		"status": resp.StatusCode,
	}).Info("GET")

	if err := checkHTTPErrors(resp, query); err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding search results: %v", ErrInvalidResponse, err)
	}

	page := &Page{
		From:    result.From,
		To:      result.To,
		Count:   result.Count,
		More:    result.More,
		Recipes: make([]recipe.Recipe, 0, len(result.Hits)),
	}
	for _, h := range result.Hits {
		page.Recipes = append(page.Recipes, h.Recipe.toRecipe(query))
	}

	return page, nil
}

// Search fetches up to maxResults recipes for query, perPage at a time.
//
// A page that fails with an API error is logged and skipped. Missing or
// rejected credentials and context cancellation stop the search and are
// returned along with whatever was collected so far. The loop ends early
// when a page comes back empty or the API reports no more results.
func (c *Client) Search(ctx context.Context, query string, maxResults, perPage int) ([]recipe.Recipe, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	log := c.logger.WithField("query", query)

	var recipes []recipe.Recipe
	for from := 0; from < maxResults; from += perPage {
		page, err := c.SearchPage(ctx, query, from, from+perPage)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return recipes, ctxErr
			}
			if IsAuthError(err) {
				return recipes, err
			}
			log.WithError(err).WithField("from", from).Warn("error fetching page")
			continue
		}

		if len(page.Recipes) == 0 {
			log.WithField("from", from).Info("no more recipes found")
			break
		}
		recipes = append(recipes, page.Recipes...)

		if !page.More {
			break
		}
	}

	return recipes, nil
}
