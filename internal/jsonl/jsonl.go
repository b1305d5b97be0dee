// Package jsonl reads and writes line-delimited JSON: one complete JSON value per line.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/born-ml/expkit/internal/metrics"
)

// ErrInvalidUTF8 is wrapped by a ParseError for a line that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ParseError reports a line that is not a valid JSON value.
type ParseError struct {
	Path string // File path, empty for plain readers
	Line int    // 1-based line number
	Err  error  // Underlying decode error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("jsonl: %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("jsonl: line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decoder reads consecutive JSON values, one per line, from an input stream.
// Lines have no length limit.
type Decoder struct {
	r    *bufio.Reader
	path string
	line int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int {
	return d.line
}

// Next decodes the next line into v. Numbers decoded into interface values
// become json.Number. It returns io.EOF once the input is
// exhausted. A final line without a trailing newline is still decoded; an
// empty line is a parse error.
func (d *Decoder) Next(v any) error {
	raw, err := d.r.ReadBytes('\n')
	if len(raw) == 0 && errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("jsonl: read line %d: %w", d.line+1, err)
	}
	d.line++
	if !utf8.Valid(raw) {
		return &ParseError{Path: d.path, Line: d.line, Err: ErrInvalidUTF8}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &ParseError{Path: d.path, Line: d.line, Err: err}
	}
	// Anything but whitespace after the first value means the line held more than one value.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return &ParseError{Path: d.path, Line: d.line, Err: err}
	}
	return nil
}

// Read loads every record of the file at path, in file order. Numbers are
// returned as json.Number so integers keep their full precision.
//
// A file-access error or the first invalid line aborts the read; no partial
// result is returned.
func Read(path string) ([]any, error) {
	return ReadInto[any](path)
}

// ReadInto loads every line of the file at path into a value of type T.
func ReadInto[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: open: %w", err)
	}
	defer f.Close()

	dec := NewDecoder(f)
	dec.path = path

	var records []T
	for {
		var rec T
		err := dec.Next(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	metrics.RecordsRead.Add(float64(len(records)))
	return records, nil
}

// Encoder writes JSON values as single compact lines. Non-ASCII and HTML
// characters are written literally rather than as \u escapes.
type Encoder struct {
	w   *bufio.Writer
	buf bytes.Buffer
	enc *json.Encoder
	n   int
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{w: bufio.NewWriter(w)}
	e.enc = json.NewEncoder(&e.buf)
	e.enc.SetEscapeHTML(false)
	return e
}

// Encode writes v followed by a newline.
func (e *Encoder) Encode(v any) error {
	e.buf.Reset()
	// json.Encoder terminates each value with '\n'.
	if err := e.enc.Encode(v); err != nil {
		return fmt.Errorf("jsonl: encode record %d: %w", e.n, err)
	}
	if _, err := e.w.Write(e.buf.Bytes()); err != nil {
		return fmt.Errorf("jsonl: write record %d: %w", e.n, err)
	}
	e.n++
	return nil
}

// Count returns the number of records encoded so far.
func (e *Encoder) Count() int {
	return e.n
}

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Write creates or truncates the file at path and writes one record per line,
// in order.
//
// The write is not atomic: a failure part way leaves a partial file behind.
func Write[T any](records []T, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("jsonl: create: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("jsonl: close: %w", cerr)
		}
	}()

	enc := NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			// Keep the records already encoded, like any unbuffered writer would.
			_ = enc.Flush()
			return err
		}
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("jsonl: flush: %w", err)
	}

	metrics.RecordsWritten.Add(float64(enc.Count()))
	return nil
}
