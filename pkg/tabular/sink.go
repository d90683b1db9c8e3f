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

package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
)

// Result is one batch-job outcome, ready for sink writing.
type Result struct {
	RecordID       string
	Success        bool
	Response       string
	Error          string
	HasMetrics     bool
	Cost           float64
	Tokens         int
	LatencySeconds float64
	OriginalRecord Record
	TaskID         string
}

// SinkConfig configures a Sink.
type SinkConfig struct {
	Path      string
	Encoding  string
	Delimiter string
}

// Sink streams batch-job results to a CSV file, flushing after every row.
// The column set is fixed on the first write: it cannot change mid-run,
// matching the source contract's "first record shapes the schema" rule.
type Sink struct {
	mu        sync.Mutex
	cfg       SinkConfig
	file      *os.File
	writer    *csv.Writer
	columns   []string
	total     int
	succeeded int
	failed    int
	totalCost float64
}

// NewSink opens the output file and writes nothing until the first
// Write call, since the column set depends on the first result's shape.
func NewSink(cfg SinkConfig) (*Sink, error) {
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("tabular: create sink %q: %w", cfg.Path, err)
	}
	w := csv.NewWriter(f)
	w.Comma = delimiterRune(cfg.Delimiter)
	return &Sink{cfg: cfg, file: f, writer: w}, nil
}

// Write emits one result row, establishing the header on the first call.
func (s *Sink) Write(r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.columns == nil {
		s.columns = columnsFor(r)
		if err := s.writer.Write(s.columns); err != nil {
			return fmt.Errorf("tabular: write header: %w", err)
		}
	}

	row := make([]string, len(s.columns))
	values := rowValues(r)
	for i, col := range s.columns {
		row[i] = values[col]
	}
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("tabular: write row %q: %w", r.RecordID, err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("tabular: flush row %q: %w", r.RecordID, err)
	}

	s.total++
	if r.Success {
		s.succeeded++
	} else {
		s.failed++
	}
	s.totalCost += r.Cost
	return nil
}

// Summary is the aggregate statistics reported by Finalize.
type Summary struct {
	Total        int
	SuccessCount int
	FailureCount int
	TotalCost    float64
	OutputPath   string
}

// Finalize closes the underlying file and returns the accumulated
// summary stats.
func (s *Sink) Finalize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Flush()
	s.file.Close()

	return Summary{
		Total:        s.total,
		SuccessCount: s.succeeded,
		FailureCount: s.failed,
		TotalCost:    s.totalCost,
		OutputPath:   s.cfg.Path,
	}
}

// columnsFor computes {record_id, success, response, error} plus
// {cost, tokens, latency} (if metrics present) plus original_<col> for
// every non-row_id column of the first record, in a stable order.
func columnsFor(r Result) []string {
	cols := []string{"record_id", "success", "response", "error"}
	if r.HasMetrics {
		cols = append(cols, "cost", "tokens", "latency")
	}

	var extra []string
	for col := range r.OriginalRecord {
		if col == RowIDColumn {
			continue
		}
		extra = append(extra, "original_"+col)
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

func rowValues(r Result) map[string]string {
	values := map[string]string{
		"record_id": r.RecordID,
		"success":   strconv.FormatBool(r.Success),
		"response":  r.Response,
		"error":     r.Error,
	}
	if r.HasMetrics {
		values["cost"] = strconv.FormatFloat(r.Cost, 'f', -1, 64)
		values["tokens"] = strconv.Itoa(r.Tokens)
		values["latency"] = strconv.FormatFloat(r.LatencySeconds, 'f', -1, 64)
	}
	for col, val := range r.OriginalRecord {
		if col == RowIDColumn {
			continue
		}
		values["original_"+col] = val
	}
	return values
}
