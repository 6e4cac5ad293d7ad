package storage

import (
	"bufio"
	"fmt"
	"os"

	"github.com/matsen/rcp/internal/quantity"
)

// EmbeddingHeader prefixes the vector line of each text record.
const EmbeddingHeader = "EMBEDDING: "

// TextSink writes records as plain text: the rendered document, then an
// "EMBEDDING: [...]" line, then a blank line.
type TextSink struct {
	f *os.File
	w *bufio.Writer
}

// NewTextSink opens path for writing.
func NewTextSink(path string, appendMode bool) (*TextSink, error) {
	f, err := os.OpenFile(path, openFlags(appendMode), 0644)
	if err != nil {
		return nil, fmt.Errorf("opening text output: %w", err)
	}
	return &TextSink{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one record.
func (s *TextSink) Write(rec Record) error {
	if _, err := s.w.WriteString(RenderText(rec)); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.URL, err)
	}
	return nil
}

// Close flushes buffered output and closes the file.
func (s *TextSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("flushing text output: %w", err)
	}
	return s.f.Close()
}

// RenderText renders one record in the text output format.
func RenderText(rec Record) string {
	return rec.Document + EmbeddingHeader + quantity.FormatVector(rec.Embedding) + "\n\n"
}
