package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matsen/rcp/internal/recipe"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database of embedded recipes.
type DB struct {
	db *sql.DB
}

// selectRecipeFields contains the standard field list for recipe queries.
const selectRecipeFields = `url, name, query, document, lines_json,
	model, embedding_json, fetched_at`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS recipes (
			url TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			query TEXT NOT NULL,
			document TEXT NOT NULL,
			lines_json TEXT,
			model TEXT NOT NULL,
			dimensions INTEGER NOT NULL,
			embedding_json TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_recipes_query ON recipes(query);

		CREATE TABLE IF NOT EXISTS ingredients (
			recipe_url TEXT NOT NULL REFERENCES recipes(url) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			text TEXT,
			quantity TEXT NOT NULL,
			measure TEXT NOT NULL,
			food TEXT NOT NULL,
			PRIMARY KEY (recipe_url, position)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Write upserts a record by URL, replacing its ingredients.
func (d *DB) Write(rec Record) error {
	embeddingJSON, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("marshaling embedding for %s: %w", rec.URL, err)
	}
	var linesJSON []byte
	if len(rec.Lines) > 0 {
		linesJSON, err = json.Marshal(rec.Lines)
		if err != nil {
			return fmt.Errorf("marshaling lines for %s: %w", rec.URL, err)
		}
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO recipes (
			url, name, query, document, lines_json,
			model, dimensions, embedding_json, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			query = excluded.query,
			document = excluded.document,
			lines_json = excluded.lines_json,
			model = excluded.model,
			dimensions = excluded.dimensions,
			embedding_json = excluded.embedding_json,
			fetched_at = excluded.fetched_at
	`, rec.URL, rec.Name, rec.Query, rec.Document, nullString(string(linesJSON)),
		rec.Model, len(rec.Embedding), string(embeddingJSON), rec.FetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upserting recipe %s: %w", rec.URL, err)
	}

	if _, err := tx.Exec("DELETE FROM ingredients WHERE recipe_url = ?", rec.URL); err != nil {
		return fmt.Errorf("clearing ingredients for %s: %w", rec.URL, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ingredients (recipe_url, position, text, quantity, measure, food)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing ingredient insert: %w", err)
	}
	defer stmt.Close()

	for i, ing := range rec.Ingredients {
		if _, err := stmt.Exec(rec.URL, i, nullString(ing.Text), ing.Quantity, ing.Measure, ing.Food); err != nil {
			return fmt.Errorf("inserting ingredient %d for %s: %w", i, rec.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing recipe %s: %w", rec.URL, err)
	}
	return nil
}

// ListRecipes returns stored records ordered by query then name. A
// non-empty query restricts the result to that query.
func (d *DB) ListRecipes(query string) ([]Record, error) {
	q := "SELECT " + selectRecipeFields + " FROM recipes"
	var args []any
	if query != "" {
		q += " WHERE query = ?"
		args = append(args, query)
	}
	q += " ORDER BY query, name"

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipes: %w", err)
	}
	// Release the only connection before querying ingredients.
	rows.Close()

	for i := range recs {
		ings, err := d.ingredients(recs[i].URL)
		if err != nil {
			return nil, err
		}
		recs[i].Ingredients = ings
	}

	return recs, nil
}

// Count returns the number of stored recipes.
func (d *DB) Count() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM recipes").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return count, nil
}

// ingredients loads the ingredients of one recipe in order.
func (d *DB) ingredients(url string) ([]recipe.Ingredient, error) {
	rows, err := d.db.Query(`
		SELECT text, quantity, measure, food FROM ingredients
		WHERE recipe_url = ? ORDER BY position
	`, url)
	if err != nil {
		return nil, fmt.Errorf("querying ingredients for %s: %w", url, err)
	}
	defer rows.Close()

	var ings []recipe.Ingredient
	for rows.Next() {
		var ing recipe.Ingredient
		var text sql.NullString
		if err := rows.Scan(&text, &ing.Quantity, &ing.Measure, &ing.Food); err != nil {
			return nil, fmt.Errorf("scanning ingredient for %s: %w", url, err)
		}
		ing.Text = text.String
		ings = append(ings, ing)
	}
	return ings, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans the selectRecipeFields columns into a Record.
func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var linesJSON sql.NullString
	var embeddingJSON string
	var fetchedAt int64

	if err := s.Scan(&rec.URL, &rec.Name, &rec.Query, &rec.Document, &linesJSON,
		&rec.Model, &embeddingJSON, &fetchedAt); err != nil {
		return nil, fmt.Errorf("scanning recipe: %w", err)
	}

	if err := json.Unmarshal([]byte(embeddingJSON), &rec.Embedding); err != nil {
		return nil, fmt.Errorf("parsing embedding for %s: %w", rec.URL, err)
	}
	if linesJSON.Valid && linesJSON.String != "" {
		if err := json.Unmarshal([]byte(linesJSON.String), &rec.Lines); err != nil {
			return nil, fmt.Errorf("parsing lines for %s: %w", rec.URL, err)
		}
	}
	rec.FetchedAt = time.UnixMilli(fetchedAt).UTC()

	return &rec, nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
