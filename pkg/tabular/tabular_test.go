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
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSourceAugmentsRowID(t *testing.T) {
	path := writeTempCSV(t, "query,extra\nhello,1\nworld,2\n")

	src, err := Open(SourceConfig{Path: path, QueryColumn: "query"})
	require.NoError(t, err)
	defer src.Close()

	records, err := src.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "0", records[0][RowIDColumn])
	require.Equal(t, "1", records[1][RowIDColumn])
	require.Equal(t, "hello", records[0]["query"])
}

func TestSourceMissingQueryColumn(t *testing.T) {
	path := writeTempCSV(t, "foo,bar\n1,2\n")

	_, err := Open(SourceConfig{Path: path, QueryColumn: "query"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "query")
	require.Contains(t, err.Error(), "foo")
}

func TestSourceEOF(t *testing.T) {
	path := writeTempCSV(t, "query\nonly\n")
	src, err := Open(SourceConfig{Path: path, QueryColumn: "query"})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next()
	require.NoError(t, err)
	_, err = src.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink, err := NewSink(SinkConfig{Path: path})
	require.NoError(t, err)

	rec := Record{"query": "hello", RowIDColumn: "0"}
	err = sink.Write(Result{
		RecordID:       "0",
		Success:        true,
		Response:       "hi there",
		HasMetrics:     true,
		Cost:           0.002,
		Tokens:         42,
		LatencySeconds: 1.5,
		OriginalRecord: rec,
	})
	require.NoError(t, err)

	summary := sink.Finalize()
	require.Equal(t, 1, summary.Total)
	require.Equal(t, 1, summary.SuccessCount)
	require.Equal(t, 0, summary.FailureCount)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "original_query")
	require.Contains(t, content, "hi there")
	require.Contains(t, content, "cost")
	require.NotContains(t, content, "original_row_id")
}

func TestSinkFailureRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink, err := NewSink(SinkConfig{Path: path})
	require.NoError(t, err)

	err = sink.Write(Result{RecordID: "0", Success: false, Error: "boom", OriginalRecord: Record{RowIDColumn: "0"}})
	require.NoError(t, err)

	summary := sink.Finalize()
	require.Equal(t, 1, summary.FailureCount)
	require.Equal(t, 0, summary.SuccessCount)
}
