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

// Package codeagent discovers and loads agent-defining code modules.
//
// The source language this was ported from exposes an `@agent` decorator
// that turns an ordinary function into a registered descriptor the moment
// its defining module is imported. Go has no import-time side effects to
// hook arbitrary source files into at runtime, so this package stands the
// pattern up explicitly: agent-defining files call Register or
// RegisterBuilder from a func init(), and Discover walks a directory tree
// to attribute already-registered descriptors back to the file and
// directory they came from (the same bookkeeping the decorator would have
// done, just performed at a different time).
package codeagent

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
)

var (
	mu          sync.Mutex
	table       = map[string]*agentregistry.Descriptor{}
	insertOrder []string
)

// Register records a fully-constructed descriptor (the "without
// parameters" decorator form). RegisterDir and SourceFile are populated
// from the caller's file if unset.
func Register(d *agentregistry.Descriptor) {
	if d == nil {
		panic("codeagent: descriptor cannot be nil")
	}
	if d.SourceFile == "" || d.RegisterDir == "" {
		if _, file, _, ok := runtime.Caller(1); ok {
			if d.SourceFile == "" {
				d.SourceFile = file
			}
			if d.RegisterDir == "" {
				d.RegisterDir = filepath.Dir(file)
			}
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := table[d.Name]; !exists {
		insertOrder = append(insertOrder, d.Name)
	}
	table[d.Name] = d
}

// RegisterBuilder records a swarm-builder directly (the "with parameters"
// decorator form): a descriptor is constructed around it immediately.
func RegisterBuilder(name, description string, build agentregistry.SwarmBuilder) {
	if name == "" {
		panic("codeagent: name cannot be empty")
	}
	if build == nil {
		panic("codeagent: builder cannot be nil")
	}

	var sourceFile, registerDir string
	if _, file, _, ok := runtime.Caller(1); ok {
		sourceFile = file
		registerDir = filepath.Dir(file)
	}

	Register(&agentregistry.Descriptor{
		Name:        name,
		Description: description,
		Builder:     build,
		SourceFile:  sourceFile,
		RegisterDir: registerDir,
		Metadata:    map[string]any{"source": "code"},
	})
}

// Registered returns every descriptor registered so far, in registration
// order.
func Registered() []*agentregistry.Descriptor {
	mu.Lock()
	defer mu.Unlock()
	out := make([]*agentregistry.Descriptor, 0, len(insertOrder))
	for _, name := range insertOrder {
		out = append(out, table[name])
	}
	return out
}

// Discover walks root, admitting files whose leaf name is not
// `__init__.*`, does not start with `_`, and whose relative path does not
// contain "plugin_manager" — then filters to files whose content contains
// the literal "codeagent.Register(" or "codeagent.RegisterBuilder(" — and
// returns the already-registered descriptors whose SourceFile falls under
// one of the admitted files.
//
// Per-file read failures are logged and skipped; they never abort the
// walk.
func Discover(root string) ([]*agentregistry.Descriptor, error) {
	admitted := make(map[string]bool)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		leaf := filepath.Base(path)
		if strings.HasPrefix(leaf, "__init__") || strings.HasPrefix(leaf, "_") {
			return nil
		}
		if strings.Contains(rel, "plugin_manager") {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			slog.Warn("codeagent: failed to read candidate file", "path", path, "error", readErr)
			return nil
		}
		content := string(data)
		if strings.Contains(content, "codeagent.Register(") || strings.Contains(content, "codeagent.RegisterBuilder(") {
			abs, absErr := filepath.Abs(path)
			if absErr != nil {
				abs = path
			}
			admitted[abs] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("codeagent: walk %q: %w", root, err)
	}

	var out []*agentregistry.Descriptor
	for _, d := range Registered() {
		if admitted[d.SourceFile] {
			out = append(out, d)
		}
	}
	return out, nil
}
