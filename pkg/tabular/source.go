// Copyright 2025 The AWorld Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tabular streams batch-job records in and results out of CSV
// files. No third-party CSV library appears anywhere in the example
// corpus this package was grounded on (confirmed against
// nevindra-oasis's ingest/csv and tools/data packages, both of which use
// encoding/csv directly) — this package follows that idiom.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// RowIDColumn is the synthetic column every Record carries in addition to
// whatever the CSV header declares.
const RowIDColumn = "row_id"

// Record is one input row, column name to string value, plus the
// synthetic row_id.
type Record map[string]string

// SourceConfig configures a Source.
type SourceConfig struct {
	Path        string
	QueryColumn string
	Encoding    string
	Delimiter   string
}

// Source streams records from a CSV file.
type Source struct {
	cfg     SourceConfig
	file    *os.File
	reader  *csv.Reader
	header  []string
	nextRow int
}

// Open validates query-column presence against the header and returns a
// ready-to-iterate Source.
func Open(cfg SourceConfig) (*Source, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open source %q: %w", cfg.Path, err)
	}

	r := csv.NewReader(f)
	r.Comma = delimiterRune(cfg.Delimiter)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tabular: read header of %q: %w", cfg.Path, err)
	}

	if cfg.QueryColumn != "" && !contains(header, cfg.QueryColumn) {
		f.Close()
		return nil, fmt.Errorf("tabular: query column %q not found in %q; available columns: %v", cfg.QueryColumn, cfg.Path, header)
	}

	return &Source{cfg: cfg, file: f, reader: r, header: header}, nil
}

// Header returns the original CSV column names (without row_id).
func (s *Source) Header() []string { return s.header }

// Next returns the next record, augmented with row_id, or io.EOF when
// exhausted.
func (s *Source) Next() (Record, error) {
	fields, err := s.reader.Read()
	if err != nil {
		return nil, err
	}

	rec := make(Record, len(s.header)+1)
	for i, col := range s.header {
		if i < len(fields) {
			rec[col] = fields[i]
		} else {
			rec[col] = ""
		}
	}
	rec[RowIDColumn] = strconv.Itoa(s.nextRow)
	s.nextRow++
	return rec, nil
}

// ReadAll loads every remaining record.
func (s *Source) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("tabular: read record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.file.Close()
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

func delimiterRune(d string) rune {
	if d == "" {
		return ','
	}
	return []rune(d)[0]
}
