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

// Package agentregistry holds the process-wide store of agent descriptors
// keyed by name and optional version, with latest-version resolution.
package agentregistry

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/aworld-dev/aworld/pkg/agent"
)

// Swarm is the retained runtime's executable agent graph, opaque to this
// package. A SwarmBuilder produces one from a descriptor's context config.
type Swarm = agent.Agent

// SwarmBuilder lazily constructs a Swarm. The dispatcher always calls the
// context-accepting form; builders that don't need a context simply ignore
// it in their closure.
type SwarmBuilder func(ctx context.Context, cfg any) (Swarm, error)

var versionPattern = regexp.MustCompile(`^v\d+$`)

// Descriptor is an immutable-after-registration record describing one
// agent: its identity, how to build its swarm, and where it came from.
type Descriptor struct {
	Name          string
	Description   string
	Version       string // "" means absent/v0 for ordering
	Builder       SwarmBuilder
	ContextConfig any
	Hooks         []string
	RegisterDir   string
	SourceFile    string
	Metadata      map[string]any

	mu     sync.Mutex
	built  Swarm
	hasRun bool
}

// Validate checks the invariants from the data model: non-empty name, and
// a version (if present) of the form "v<N>".
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidDescriptor)
	}
	if d.Version != "" && !versionPattern.MatchString(d.Version) {
		return fmt.Errorf("%w: version %q must match v<N>", ErrInvalidDescriptor, d.Version)
	}
	if d.Builder == nil {
		return fmt.Errorf("%w: swarm-builder cannot be nil", ErrInvalidDescriptor)
	}
	return nil
}

// Build invokes the swarm-builder at most once successfully: on success,
// the result is cached and replaces the builder for subsequent calls.
func (d *Descriptor) Build(ctx context.Context) (Swarm, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hasRun {
		return d.built, nil
	}
	sw, err := d.Builder(ctx, d.ContextConfig)
	if err != nil {
		return nil, err
	}
	d.built = sw
	d.hasRun = true
	return sw, nil
}

// Key returns the registry key for this descriptor: "name:version" if a
// version is set, else the bare name.
func (d *Descriptor) Key() string {
	if d.Version == "" {
		return d.Name
	}
	return d.Name + ":" + d.Version
}
