// Package pipeline runs the fetch, render, embed and write loop.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matsen/rcp/internal/embedding"
	"github.com/matsen/rcp/internal/recipe"
	"github.com/matsen/rcp/internal/storage"
	"github.com/sirupsen/logrus"
)

// Searcher returns recipes for a query. *edamam.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults, perPage int) ([]recipe.Recipe, error)
}

// Options controls a run.
type Options struct {
	MaxResults   int
	PerPage      int
	IncludeLines bool
}

// Stats summarizes a run.
type Stats struct {
	Queries  int           `json:"queries"`
	Fetched  int           `json:"fetched"`
	Embedded int           `json:"embedded"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration_ns"`
}

// Runner wires a searcher, an embedding provider and a sink together.
// It processes one recipe at a time.
type Runner struct {
	searcher Searcher
	embedder embedding.Provider
	sink     storage.Sink
	logger   *logrus.Entry
	opts     Options
	now      func() time.Time
}

// NewRunner creates a Runner. A nil logger logs to the standard logrus logger.
func NewRunner(searcher Searcher, embedder embedding.Provider, sink storage.Sink, logger *logrus.Entry, opts Options) *Runner {
	if logger == nil {
		logger = logrus.WithField("component", "pipeline")
	}
	return &Runner{
		searcher: searcher,
		embedder: embedder,
		sink:     sink,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Run processes each query in order. A recipe whose embedding fails is
// logged and skipped. Search errors, sink errors and cancellation stop the
// run; the returned Stats cover the work done up to that point.
func (r *Runner) Run(ctx context.Context, queries []string) (Stats, error) {
	start := r.now()
	var stats Stats

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			stats.Duration = r.now().Sub(start)
			return stats, err
		}

		log := r.logger.WithField("query", query)
		log.Info("fetching recipes")

		recipes, err := r.searcher.Search(ctx, query, r.opts.MaxResults, r.opts.PerPage)
		stats.Queries++
		stats.Fetched += len(recipes)
		if err != nil {
			stats.Duration = r.now().Sub(start)
			return stats, fmt.Errorf("searching %q: %w", query, err)
		}

		for _, rec := range recipes {
			ok, err := r.process(ctx, rec, log)
			if err != nil {
				stats.Duration = r.now().Sub(start)
				return stats, err
			}
			if ok {
				stats.Embedded++
			} else {
				stats.Skipped++
			}
		}
	}

	stats.Duration = r.now().Sub(start)
	r.logger.WithFields(logrus.Fields{
		"queries":  stats.Queries,
		"fetched":  stats.Fetched,
		"embedded": stats.Embedded,
		"skipped":  stats.Skipped,
	}).Info("run complete")
	return stats, nil
}

// process embeds and writes one recipe. It reports false when the recipe
// was skipped.
func (r *Runner) process(ctx context.Context, rec recipe.Recipe, log *logrus.Entry) (bool, error) {
	doc := recipe.Document(rec, recipe.DocumentOptions{IncludeLines: r.opts.IncludeLines})

	emb, err := r.embedder.Embed(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		log.WithError(err).WithField("url", rec.URL).Warn("embedding failed, skipping recipe")
		return false, nil
	}

	out := storage.NewRecord(rec, doc, r.embedder.ModelName(), emb.Vector, r.now().UTC())
	if err := r.sink.Write(out); err != nil {
		return false, fmt.Errorf("writing %s: %w", rec.URL, err)
	}

	log.WithFields(logrus.Fields{
		"name":       rec.Name,
		"dimensions": emb.Dimensions(),
	}).Debug("embedded recipe")
	return true, nil
}
