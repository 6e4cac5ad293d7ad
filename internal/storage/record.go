// Package storage writes embedded recipes to text, JSONL and SQLite
// outputs, and reads the JSONL and SQLite outputs back.
package storage

import (
	"fmt"
	"os"
	"time"

	"github.com/matsen/rcp/internal/recipe"
)

// Output formats accepted by OpenSink.
const (
	FormatText   = "text"
	FormatJSONL  = "jsonl"
	FormatSQLite = "sqlite"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSONL, FormatSQLite}

// Record is one embedded recipe as written to an output.
type Record struct {
	Query       string              `json:"query"`
	Name        string              `json:"name"`
	URL         string              `json:"url"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Lines       []string            `json:"lines,omitempty"`
	Document    string              `json:"document"`
	Model       string              `json:"model"`
	Embedding   []float64           `json:"embedding"`
	FetchedAt   time.Time           `json:"fetched_at"`
}

// NewRecord pairs a recipe with its rendered document and embedding.
func NewRecord(r recipe.Recipe, document, model string, vector []float64, fetchedAt time.Time) Record {
	return Record{
		Query:       r.Query,
		Name:        r.Name,
		URL:         r.URL,
		Ingredients: r.Ingredients,
		Lines:       r.Lines,
		Document:    document,
		Model:       model,
		Embedding:   vector,
		FetchedAt:   fetchedAt,
	}
}

// Sink receives records in the order they are produced.
type Sink interface {
	Write(rec Record) error
	Close() error
}

// OpenSink opens an output of the given format at path. With appendMode,
// text and JSONL outputs are appended to instead of truncated; SQLite
// outputs always upsert by URL.
func OpenSink(format, path string, appendMode bool) (Sink, error) {
	switch format {
	case FormatText:
		return NewTextSink(path, appendMode)
	case FormatJSONL:
		return NewJSONLSink(path, appendMode)
	case FormatSQLite:
		return OpenDB(path)
	default:
		return nil, fmt.Errorf("unknown output format %q (valid: %v)", format, Formats)
	}
}

// ReadRecords reads back a JSONL or SQLite output. A missing file yields no
// records. A non-empty query restricts the result to records fetched for
// that query.
func ReadRecords(format, path, query string) ([]Record, error) {
	switch format {
	case FormatJSONL:
		recs, err := ReadAll(path)
		if err != nil {
			return nil, err
		}
		if query == "" {
			return recs, nil
		}
		var filtered []Record
		for _, rec := range recs {
			if rec.Query == query {
				filtered = append(filtered, rec)
			}
		}
		return filtered, nil
	case FormatSQLite:
		// Opening creates the schema, so a missing file is checked first and
		// read as empty, like a missing JSONL file.
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		db, err := OpenDB(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.ListRecipes(query)
	default:
		return nil, fmt.Errorf("cannot read %q output (valid: %s, %s)", format, FormatJSONL, FormatSQLite)
	}
}

// openFlags returns the os.OpenFile flags for a write-only output.
func openFlags(appendMode bool) int {
	if appendMode {
		return os.O_APPEND | os.O_CREATE | os.O_WRONLY
	}
	return os.O_TRUNC | os.O_CREATE | os.O_WRONLY
}
