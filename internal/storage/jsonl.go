package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines.
// A 1024-dimension embedding plus the document fits comfortably in 1MB.
const MaxJSONLLineCapacity = 1024 * 1024

// JSONLSink writes one JSON object per line.
type JSONLSink struct {
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLSink opens path for writing.
func NewJSONLSink(path string, appendMode bool) (*JSONLSink, error) {
	f, err := os.OpenFile(path, openFlags(appendMode), 0644)
	if err != nil {
		return nil, fmt.Errorf("opening JSONL output: %w", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLSink{f: f, w: w, enc: enc}, nil
}

// Write appends one record as a line.
func (s *JSONLSink) Write(rec Record) error {
	if err := s.enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.URL, err)
	}
	return nil
}

// Close flushes buffered output and closes the file.
func (s *JSONLSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("flushing JSONL output: %w", err)
	}
	return s.f.Close()
}

// ReadAll reads all records from a JSONL file.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file reads as empty
		}
		return nil, fmt.Errorf("opening JSONL file: %w", err)
	}
	defer f.Close()

	var recs []Record
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading JSONL file: %w", err)
	}

	return recs, nil
}
