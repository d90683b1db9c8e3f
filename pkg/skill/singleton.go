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
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aworld-dev/aworld/pkg/sourcecache"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the lazily initialized process-wide registry, seeded
// from SKILLS_PATH (or ~/.aworld/skills if unset), the legacy SKILLS_DIR,
// any extraPaths passed by the caller, and ./skills relative to the
// current working directory if present. The git cache root comes from
// SKILLS_CACHE_DIR, defaulting to ~/.aworld/skills.
func Default(extraPaths ...string) *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(KeepFirst, sourcecache.New(cacheRoot()))
		seedDefault(defaultRegistry, extraPaths)
	})
	return defaultRegistry
}

func cacheRoot() string {
	if v := os.Getenv("SKILLS_CACHE_DIR"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".aworld", "skills")
}

func seedDefault(r *Registry, extraPaths []string) {
	ctx := context.Background()

	paths := skillsPathEnv()
	if len(paths) == 0 {
		def := filepath.Join(homeDir(), ".aworld", "skills")
		if err := os.MkdirAll(def, 0o755); err != nil {
			slog.Warn("skill: failed to create default skills dir", "path", def, "error", err)
		}
		paths = []string{def}
	}
	for _, p := range paths {
		registerQuiet(r, ctx, p)
	}

	if legacy := os.Getenv("SKILLS_DIR"); legacy != "" {
		registerQuiet(r, ctx, legacy)
	}

	for _, p := range extraPaths {
		registerQuiet(r, ctx, p)
	}

	if info, err := os.Stat("./skills"); err == nil && info.IsDir() {
		registerQuiet(r, ctx, "./skills")
	}
}

func registerQuiet(r *Registry, ctx context.Context, path string) {
	if _, err := r.RegisterSource(ctx, path, path, false); err != nil {
		slog.Warn("skill: failed to register default source", "path", path, "error", err)
	}
}

func skillsPathEnv() []string {
	raw := os.Getenv("SKILLS_PATH")
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}
