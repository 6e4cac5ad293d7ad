package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matsen/rcp/internal/recipe"
)

// testRecords returns two records for different queries.
func testRecords() []Record {
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return []Record{
		{
			Query: "chicken",
			Name:  "Roast Chicken",
			URL:   "https://example.com/roast-chicken",
			Ingredients: []recipe.Ingredient{
				{Text: "1 whole chicken", Quantity: "1", Measure: "whole", Food: "chicken"},
				{Quantity: "0", Measure: "0", Food: "salt"},
			},
			Lines:     []string{"1 whole chicken", "salt"},
			Document:  "URL: https://example.com/roast-chicken\nNAME: Roast Chicken\nINGREDIENTS:\n1,whole,chicken\n0,0,salt\n",
			Model:     "amazon.titan-embed-text-v2:0",
			Embedding: []float64{0.5, -0.25, 1},
			FetchedAt: at,
		},
		{
			Query: "tofu",
			Name:  "Mapo Tofu",
			URL:   "https://example.com/mapo-tofu",
			Ingredients: []recipe.Ingredient{
				{Text: "0.5 lb tofu", Quantity: "0.5", Measure: "pound", Food: "tofu"},
			},
			Document:  "URL: https://example.com/mapo-tofu\nNAME: Mapo Tofu\nINGREDIENTS:\n0.5,pound,tofu\n",
			Model:     "amazon.titan-embed-text-v2:0",
			Embedding: []float64{0.125, 0.375, 0.625},
			FetchedAt: at.Add(time.Minute),
		},
	}
}

func writeAll(t *testing.T, s Sink, recs []Record) {
	t.Helper()
	for _, rec := range recs {
		if err := s.Write(rec); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestTextSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.txt")
	recs := testRecords()

	s, err := NewTextSink(path, false)
	if err != nil {
		t.Fatalf("NewTextSink() error = %v", err)
	}
	writeAll(t, s, recs[:1])

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "URL: https://example.com/roast-chicken\n" +
		"NAME: Roast Chicken\n" +
		"INGREDIENTS:\n" +
		"1,whole,chicken\n" +
		"0,0,salt\n" +
		"EMBEDDING: [0.5, -0.25, 1.0]\n" +
		"\n"
	if string(data) != want {
		t.Errorf("text output =\n%s\nwant\n%s", data, want)
	}
}

func TestTextSink_AppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.txt")
	recs := testRecords()

	for _, rec := range recs {
		s, err := NewTextSink(path, true)
		if err != nil {
			t.Fatalf("NewTextSink() error = %v", err)
		}
		writeAll(t, s, []Record{rec})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), EmbeddingHeader); got != 2 {
		t.Errorf("found %d records, want 2", got)
	}

	// Truncating mode replaces the file.
	s, err := NewTextSink(path, false)
	if err != nil {
		t.Fatal(err)
	}
	writeAll(t, s, recs[1:])
	data, _ = os.ReadFile(path)
	if got := strings.Count(string(data), EmbeddingHeader); got != 1 {
		t.Errorf("found %d records after truncate, want 1", got)
	}
}

func TestJSONLSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.jsonl")
	recs := testRecords()

	s, err := NewJSONLSink(path, false)
	if err != nil {
		t.Fatalf("NewJSONLSink() error = %v", err)
	}
	writeAll(t, s, recs)

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, recs) {
		t.Errorf("ReadAll() = %+v, want %+v", got, recs)
	}
}

func TestReadAll_NonExistentFile(t *testing.T) {
	recs, err := ReadAll("/nonexistent/path/recipes.jsonl")
	if err != nil {
		t.Fatalf("ReadAll() error = %v (should return nil for nonexistent file)", err)
	}
	if len(recs) != 0 {
		t.Errorf("ReadAll() returned %d records, want 0", len(recs))
	}
}

func TestReadAll_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.jsonl")
	content := `{"query":"beef","name":"Stew","url":"https://example.com/stew"}` + "\n\n{broken\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadAll(path)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("ReadAll() error = %v, want parse error on line 3", err)
	}
}

func TestSQLite_WriteAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")
	recs := testRecords()

	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	for _, rec := range recs {
		if err := db.Write(rec); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	got, err := db.ListRecipes("")
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}
	if !reflect.DeepEqual(got, recs) {
		t.Errorf("ListRecipes() = %+v, want %+v", got, recs)
	}

	tofu, err := db.ListRecipes("tofu")
	if err != nil {
		t.Fatalf("ListRecipes(tofu) error = %v", err)
	}
	if len(tofu) != 1 || tofu[0].Name != "Mapo Tofu" {
		t.Errorf("ListRecipes(tofu) = %+v", tofu)
	}
}

func TestSQLite_UpsertReplacesIngredients(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	rec := testRecords()[0]
	if err := db.Write(rec); err != nil {
		t.Fatal(err)
	}

	rec.Name = "Roast Chicken (updated)"
	rec.Ingredients = rec.Ingredients[:1]
	if err := db.Write(rec); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListRecipes("")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("ListRecipes() returned %d records, want 1", len(got))
	}
	if got[0].Name != "Roast Chicken (updated)" {
		t.Errorf("Name = %q", got[0].Name)
	}
	if len(got[0].Ingredients) != 1 {
		t.Errorf("Ingredients = %+v, want 1", got[0].Ingredients)
	}
}

func TestOpenSink_And_ReadRecords(t *testing.T) {
	dir := t.TempDir()
	recs := testRecords()

	for _, format := range []string{FormatJSONL, FormatSQLite} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "out."+format)
			s, err := OpenSink(format, path, false)
			if err != nil {
				t.Fatalf("OpenSink() error = %v", err)
			}
			writeAll(t, s, recs)

			got, err := ReadRecords(format, path, "chicken")
			if err != nil {
				t.Fatalf("ReadRecords() error = %v", err)
			}
			if len(got) != 1 || got[0].URL != recs[0].URL {
				t.Errorf("ReadRecords(chicken) = %+v", got)
			}
		})
	}
}

func TestReadRecords_MissingFile(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{FormatJSONL, FormatSQLite} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "missing."+format)
			recs, err := ReadRecords(format, path, "")
			if err != nil {
				t.Fatalf("ReadRecords() error = %v", err)
			}
			if len(recs) != 0 {
				t.Errorf("ReadRecords() returned %d records, want 0", len(recs))
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("ReadRecords() created %s", path)
			}
		})
	}
}

func TestOpenSink_UnknownFormat(t *testing.T) {
	if _, err := OpenSink("parquet", filepath.Join(t.TempDir(), "x"), false); err == nil {
		t.Error("OpenSink() expected error for unknown format")
	}
	if _, err := ReadRecords(FormatText, "x", ""); err == nil {
		t.Error("ReadRecords() expected error for text format")
	}
}

func TestNewRecord(t *testing.T) {
	at := time.Now()
	r := recipe.Recipe{Query: "beef", Name: "Stew", URL: "u", Lines: []string{"1 lb beef"}}
	rec := NewRecord(r, "doc", "model", []float64{1}, at)

	if rec.Query != "beef" || rec.Name != "Stew" || rec.URL != "u" || rec.Document != "doc" || rec.Model != "model" {
		t.Errorf("NewRecord() = %+v", rec)
	}
	if !rec.FetchedAt.Equal(at) || len(rec.Lines) != 1 {
		t.Errorf("NewRecord() = %+v", rec)
	}
}
