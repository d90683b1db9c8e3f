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

package skill

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aworld-dev/aworld/pkg/sourcecache"
)

func writeSkill(t *testing.T, root, dir, content string) {
	t.Helper()
	d := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(d, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d, "skill.md"), []byte(content), 0o644))
}

func newTestRegistry(t *testing.T, policy ConflictPolicy) *Registry {
	return New(policy, sourcecache.New(t.TempDir()))
}

func TestRegisterSourceDiscoversSkills(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "writer", "---\nname: writer\ndescription: writes things\n---\nUse this to write.")
	writeSkill(t, root, "reader", "---\nname: reader\n---\nUse this to read.")

	r := newTestRegistry(t, KeepFirst)
	n, err := r.RegisterSource(context.Background(), root, "local", false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"reader", "writer"}, r.ListSkills())
}

func TestRegisterSourceKeepFirstPolicy(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeSkill(t, rootA, "writer", "---\nname: writer\ndescription: A\n---\nbody A")
	writeSkill(t, rootB, "writer", "---\nname: writer\ndescription: B\n---\nbody B")

	r := newTestRegistry(t, KeepFirst)
	_, err := r.RegisterSource(context.Background(), rootA, "a", false)
	require.NoError(t, err)
	_, err = r.RegisterSource(context.Background(), rootB, "b", false)
	require.NoError(t, err)

	e, ok := r.Get("writer")
	require.True(t, ok)
	assert.Equal(t, "A", e.Description)
}

func TestRegisterSourceKeepLastPolicy(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeSkill(t, rootA, "writer", "---\nname: writer\ndescription: A\n---\nbody A")
	writeSkill(t, rootB, "writer", "---\nname: writer\ndescription: B\n---\nbody B")

	r := newTestRegistry(t, KeepLast)
	_, err := r.RegisterSource(context.Background(), rootA, "a", false)
	require.NoError(t, err)
	_, err = r.RegisterSource(context.Background(), rootB, "b", false)
	require.NoError(t, err)

	e, ok := r.Get("writer")
	require.True(t, ok)
	assert.Equal(t, "B", e.Description)
}

// P2 Skill attribution: exactly one source-key claims a skill name at any
// time; after unregister_source(k), no skill attributed to k remains.
func TestUnregisterSourceRemovesOnlyItsSkills(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "writer", "---\nname: writer\n---\nbody")

	r := newTestRegistry(t, KeepFirst)
	_, err := r.RegisterSource(context.Background(), root, "local", false)
	require.NoError(t, err)

	r.UnregisterSource("local")
	assert.Empty(t, r.ListSkills())
	assert.NotContains(t, r.ListSources(), "local")
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "writer", "---\nname: writer\ndescription: Writes Markdown Documents\n---\nbody")

	r := newTestRegistry(t, KeepFirst)
	_, err := r.RegisterSource(context.Background(), root, "local", false)
	require.NoError(t, err)

	results := r.Search("markdown", nil)
	require.Len(t, results, 1)
	assert.Equal(t, "writer", results[0].Name)
}

func TestGetByRegex(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "ctx-a", "---\nname: ctx-a\n---\nbody")
	writeSkill(t, root, "other", "---\nname: other\n---\nbody")

	r := newTestRegistry(t, KeepFirst)
	_, err := r.RegisterSource(context.Background(), root, "local", false)
	require.NoError(t, err)

	results, err := r.GetByRegex("^ctx-.*", "name")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ctx-a", results[0].Name)
}
