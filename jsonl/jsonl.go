// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package jsonl reads and writes line-delimited JSON files: one JSON value
// per line, UTF-8, in record order.
//
// Example usage:
//
//	import "github.com/born-ml/expkit/jsonl"
//
//	if err := jsonl.Write([]map[string]any{{"a": 1}, {"b": "ü"}}, "data.jsonl"); err != nil {
//	    log.Fatal(err)
//	}
//	records, err := jsonl.Read("data.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Output is compact and keeps non-ASCII characters and HTML characters as
// they are. Generic reads keep numbers as json.Number.
package jsonl

import (
	"io"

	"github.com/born-ml/expkit/internal/jsonl"
)

// ParseError reports an invalid line. Line numbers start at 1.
type ParseError = jsonl.ParseError

// ErrInvalidUTF8 is wrapped by the ParseError for a line that is not valid UTF-8.
var ErrInvalidUTF8 = jsonl.ErrInvalidUTF8

// Decoder reads one JSON value per line from a stream.
type Decoder = jsonl.Decoder

// Encoder writes one JSON value per line to a stream.
type Encoder = jsonl.Encoder

// Read parses every line of the file at path.
//
// The whole read fails on the first invalid line with a *ParseError; a
// missing or unreadable file yields the underlying file error.
func Read(path string) ([]any, error) {
	return jsonl.Read(path)
}

// ReadInto parses every line of the file at path into a T.
func ReadInto[T any](path string) ([]T, error) {
	return jsonl.ReadInto[T](path)
}

// Write creates or truncates the file at path and writes one record per line.
// The file is not written atomically.
func Write[T any](records []T, path string) error {
	return jsonl.Write(records, path)
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return jsonl.NewDecoder(r)
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return jsonl.NewEncoder(w)
}
