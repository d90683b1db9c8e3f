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

package agentregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopBuilder(ctx context.Context, cfg any) (Swarm, error) { return nil, nil }

func descriptor(name, version string) *Descriptor {
	return &Descriptor{Name: name, Version: version, Builder: noopBuilder}
}

func TestRegisterUniqueness(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(descriptor("foo", "")))
	require.NoError(t, r.Register(descriptor("foo", ""))) // overwrite, not an error
	assert.Equal(t, 1, r.Count())
}

func TestRegisterRejectsInvalid(t *testing.T) {
	r := New()
	err := r.Register(&Descriptor{Name: "", Builder: noopBuilder})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	err = r.Register(&Descriptor{Name: "foo", Version: "bogus", Builder: noopBuilder})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestRegisterManyAtomic(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(descriptor("existing", "")))

	err := r.RegisterMany([]*Descriptor{
		descriptor("a", ""),
		descriptor("b", ""),
		descriptor("a", ""), // duplicate within batch
	})
	require.Error(t, err)
	assert.False(t, r.Exists("a", ""))
	assert.False(t, r.Exists("b", ""))
	assert.True(t, r.Exists("existing", ""))
}

func TestRegisterManyCommitsAllOnSuccess(t *testing.T) {
	r := New()
	err := r.RegisterMany([]*Descriptor{
		descriptor("a", ""),
		descriptor("b", "v1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())
}

func TestVersionSelection(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(descriptor("foo", "v0")))
	require.NoError(t, r.Register(descriptor("foo", "v2")))
	require.NoError(t, r.Register(descriptor("foo", "v10")))

	d, ok := r.Get("foo", "")
	require.True(t, ok)
	assert.Equal(t, "v10", d.Version)

	d, ok = r.Get("foo", "v2")
	require.True(t, ok)
	assert.Equal(t, "v2", d.Version)
}

func TestListNamesStripsVersionAndSorts(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(descriptor("bot", "v0")))
	require.NoError(t, r.Register(descriptor("bot", "v1")))
	require.NoError(t, r.Register(descriptor("bot", "v10")))
	require.NoError(t, r.Register(descriptor("alpha", "")))

	assert.Equal(t, []string{"alpha", "bot"}, r.ListNames())
}

func TestUnregisterExactKey(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(descriptor("foo", "")))
	r.Unregister("foo")
	assert.False(t, r.Exists("foo", ""))
}

func TestClear(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(descriptor("foo", "")))
	r.Clear()
	assert.Equal(t, 0, r.Count())
}

func TestBuildCachesAfterFirstSuccess(t *testing.T) {
	calls := 0
	d := &Descriptor{
		Name: "foo",
		Builder: func(ctx context.Context, cfg any) (Swarm, error) {
			calls++
			return nil, nil
		},
	}
	_, err := d.Build(context.Background())
	require.NoError(t, err)
	_, err = d.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
