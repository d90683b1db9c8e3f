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

package codeagent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
)

func noopBuilder(ctx context.Context, cfg any) (agentregistry.Swarm, error) {
	return nil, nil
}

func writeGoFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRegisterBuilderAttributesCallerFile(t *testing.T) {
	RegisterBuilder("test-register-builder", "demo", noopBuilder)

	found := false
	for _, d := range Registered() {
		if d.Name == "test-register-builder" {
			found = true
			assert.Contains(t, d.SourceFile, "codeagent_test.go")
			assert.Equal(t, "code", d.Metadata["source"])
		}
	}
	assert.True(t, found)
}

func TestRegisterKeepsExplicitSourceFile(t *testing.T) {
	d := &agentregistry.Descriptor{
		Name:        "test-explicit-source",
		Builder:     noopBuilder,
		SourceFile:  "/srv/custom/agent.go",
		RegisterDir: "/srv/custom",
	}
	Register(d)

	for _, got := range Registered() {
		if got.Name == "test-explicit-source" {
			assert.Equal(t, "/srv/custom/agent.go", got.SourceFile)
			return
		}
	}
	t.Fatal("descriptor not found after Register")
}

func TestDiscoverFiltersByContentAndPath(t *testing.T) {
	root := t.TempDir()

	matchFile := filepath.Join(root, "agents", "weather.go")
	writeGoFile(t, matchFile, `package agents

func init() {
	codeagent.RegisterBuilder("weather", "forecasts", build)
}
`)

	skipUnderscore := filepath.Join(root, "agents", "_draft.go")
	writeGoFile(t, skipUnderscore, `package agents

func init() {
	codeagent.RegisterBuilder("draft", "wip", build)
}
`)

	skipPluginManager := filepath.Join(root, "plugin_manager", "loader.go")
	writeGoFile(t, skipPluginManager, `package pluginmanager

func init() {
	codeagent.RegisterBuilder("loader", "internal", build)
}
`)

	noMarker := filepath.Join(root, "agents", "helpers.go")
	writeGoFile(t, noMarker, `package agents

func helper() {}
`)

	abs, err := filepath.Abs(matchFile)
	require.NoError(t, err)
	Register(&agentregistry.Descriptor{
		Name:        "weather",
		Builder:     noopBuilder,
		SourceFile:  abs,
		RegisterDir: filepath.Dir(abs),
	})

	absUnderscore, err := filepath.Abs(skipUnderscore)
	require.NoError(t, err)
	Register(&agentregistry.Descriptor{
		Name:        "draft",
		Builder:     noopBuilder,
		SourceFile:  absUnderscore,
		RegisterDir: filepath.Dir(absUnderscore),
	})

	discovered, err := Discover(root)
	require.NoError(t, err)

	names := make([]string, 0, len(discovered))
	for _, d := range discovered {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "weather")
	assert.NotContains(t, names, "draft")
	assert.NotContains(t, names, "loader")
}

func TestDiscoverEmptyRootReturnsNoDescriptors(t *testing.T) {
	discovered, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, discovered)
}
