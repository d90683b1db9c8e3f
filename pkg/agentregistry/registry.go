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
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry is the process-wide, mutex-guarded store of agent descriptors.
// Keys are "name" when a descriptor carries no version, or "name:version"
// when it does.
type Registry struct {
	mu    sync.Mutex
	items map[string]*Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{items: make(map[string]*Descriptor)}
}

// Register inserts a descriptor, overwriting any existing entry under the
// same key (a warning is logged on overwrite, never an error).
func (r *Registry) Register(d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := d.Key()
	if _, exists := r.items[key]; exists {
		slog.Warn("agentregistry: overwriting existing descriptor", "key", key)
	}
	r.items[key] = d
	return nil
}

// RegisterMany pre-validates every descriptor (non-empty, unique within
// the batch, no collision with the existing registry) and commits all of
// them atomically: if any item is rejected, none are registered.
func (r *Registry) RegisterMany(ds []*Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(ds))
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			return err
		}
		key := d.Key()
		if _, dup := seen[key]; dup {
			return &RegistryError{Op: "register_many", Key: key, Message: "duplicate within batch", Err: ErrDuplicateInBatch}
		}
		seen[key] = struct{}{}
	}

	for _, d := range ds {
		r.items[d.Key()] = d
	}
	return nil
}

// Unregister removes the exact key match. It is not an error to unregister
// a key that is not present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, name)
}

// Get resolves a descriptor by name and optional version. If version is
// non-empty, the exact "name:version" key is looked up. Otherwise, the
// bare-name key is tried first; failing that, every "name:v*" entry is
// collected and the one with the highest numeric suffix (missing = 0) is
// returned.
func (r *Registry) Get(name, version string) (*Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if version != "" {
		d, ok := r.items[name+":"+version]
		return d, ok
	}
	if d, ok := r.items[name]; ok {
		return d, true
	}

	prefix := name + ":"
	var best *Descriptor
	bestN := -1
	for key, d := range r.items {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		n := versionNumber(key[len(prefix):])
		if n > bestN {
			bestN = n
			best = d
		}
	}
	return best, best != nil
}

// Exists reports whether the exact key (bare name, or "name:version" if
// version is non-empty) is registered.
func (r *Registry) Exists(name, version string) bool {
	key := name
	if version != "" {
		key = name + ":" + version
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[key]
	return ok
}

// ListAgents returns every registered descriptor, in no particular order.
func (r *Registry) ListAgents() []*Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Descriptor, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	return out
}

// ListNames returns the unique base names (version suffix stripped),
// sorted lexically.
func (r *Registry) ListNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	for _, d := range r.items {
		seen[d.Name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clear removes every registered descriptor.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string]*Descriptor)
}

// Count returns the number of registered keys.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// versionNumber parses a "v<N>" suffix, defaulting to 0 when it does not
// parse (matching the "missing = 0" ordering rule).
func versionNumber(suffix string) int {
	if !strings.HasPrefix(suffix, "v") {
		return 0
	}
	n, err := strconv.Atoi(suffix[1:])
	if err != nil {
		return 0
	}
	return n
}
