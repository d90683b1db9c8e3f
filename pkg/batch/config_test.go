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

package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  path: in.csv
agent:
  name: assistant
output:
  path: out.csv
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "query", cfg.Input.QueryColumn)
	require.Equal(t, "utf-8", cfg.Input.Encoding)
	require.Equal(t, ",", cfg.Input.Delimiter)
	require.Equal(t, 1, cfg.Execution.Parallel)
}

func TestLoadConfigRejectsMissingRequiredFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agent:
  name: assistant
output:
  path: out.csv
`), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "input.path", cfgErr.Field)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestJobConfigPreservesExplicitValues(t *testing.T) {
	cfg := JobConfig{
		Input: InputConfig{Path: "in.csv", QueryColumn: "question", Delimiter: ";"},
		Agent: AgentConfig{Name: "assistant"},
		Output: OutputConfig{Path: "out.csv"},
		Execution: ExecutionConfig{Parallel: 8},
	}
	cfg.applyDefaults()
	require.Equal(t, "question", cfg.Input.QueryColumn)
	require.Equal(t, ";", cfg.Input.Delimiter)
	require.Equal(t, 8, cfg.Execution.Parallel)
}
