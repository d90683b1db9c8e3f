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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aworld-dev/aworld/pkg/frontmatter"
	"github.com/aworld-dev/aworld/pkg/sourcecache"
)

// Registry is a process-wide catalog of skills contributed by one or more
// sources (local directories or git-cached remote repositories).
//
// Every name in the skill map is tracked by exactly one source-key;
// sources that contributed nothing are still retained.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]Entry
	sources  map[string]*source
	policy   ConflictPolicy
	resolver *sourcecache.Manager
}

// New returns an empty registry using the given conflict policy and
// git-cache resolver.
func New(policy ConflictPolicy, resolver *sourcecache.Manager) *Registry {
	return &Registry{
		entries:  make(map[string]Entry),
		sources:  make(map[string]*source),
		policy:   policy,
		resolver: resolver,
	}
}

// RegisterSource resolves ref via the cache manager, walks the resolved
// directory for skill.md/SKILL.md files, parses each, and inserts the
// resulting entries under the registry's conflict policy. It returns the
// number of skills successfully inserted under this source.
//
// If the source is already registered and forceReload is false, the
// existing contribution count is returned without re-walking the
// filesystem; forceReload is equivalent to unregistering then
// re-registering.
func (r *Registry) RegisterSource(ctx context.Context, ref, alias string, forceReload bool) (int, error) {
	key := alias
	if key == "" {
		key = ref
	}

	r.mu.Lock()
	if existing, ok := r.sources[key]; ok && !forceReload {
		n := len(existing.skillNames)
		r.mu.Unlock()
		return n, nil
	}
	r.mu.Unlock()
	if forceReload {
		r.UnregisterSource(key)
	}

	resolved, err := r.resolver.Resolve(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("skill: resolve source %q: %w", ref, err)
	}

	found, err := walkSkillFiles(resolved)
	if err != nil {
		return 0, fmt.Errorf("skill: walk %q: %w", resolved, err)
	}

	entries := make([]Entry, 0, len(found))
	for _, path := range found {
		e, err := parseSkillFile(path)
		if err != nil {
			slog.Warn("skill: failed to parse skill file", "path", path, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.policy == Raise {
		for _, e := range entries {
			if _, exists := r.entries[e.Name]; exists {
				return 0, fmt.Errorf("skill: name collision on %q under raise policy", e.Name)
			}
		}
	}

	src := &source{key: key, resolvedPath: resolved}
	inserted := 0
	for _, e := range entries {
		if existing, exists := r.entries[e.Name]; exists {
			switch r.policy {
			case KeepFirst:
				slog.Warn("skill: keeping first registration, dropping duplicate", "name", e.Name, "source", key)
				continue
			case KeepLast:
				r.transferAttribution(existing.Name, key)
			}
		}
		r.entries[e.Name] = e
		src.skillNames = append(src.skillNames, e.Name)
		inserted++
	}

	r.sources[key] = src
	return inserted, nil
}

// transferAttribution removes name from whichever source currently claims
// it, so a keep-last replacement doesn't leave it double-attributed.
func (r *Registry) transferAttribution(name, newOwner string) {
	for k, s := range r.sources {
		if k == newOwner {
			continue
		}
		for i, n := range s.skillNames {
			if n == name {
				s.skillNames = append(s.skillNames[:i], s.skillNames[i+1:]...)
				break
			}
		}
	}
}

// UnregisterSource removes a source and every skill still attributed to
// it.
func (r *Registry) UnregisterSource(alias string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.sources[alias]
	if !ok {
		return
	}
	for _, name := range src.skillNames {
		if e, exists := r.entries[name]; exists && r.attributedTo(e.Name, alias) {
			delete(r.entries, name)
		}
	}
	delete(r.sources, alias)
}

func (r *Registry) attributedTo(name, alias string) bool {
	src, ok := r.sources[alias]
	if !ok {
		return false
	}
	for _, n := range src.skillNames {
		if n == name {
			return true
		}
	}
	return false
}

// ReloadSource re-registers alias's original source path, picking up any
// skills added or removed on disk.
func (r *Registry) ReloadSource(ctx context.Context, alias string) (int, error) {
	r.mu.Lock()
	src, ok := r.sources[alias]
	r.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("skill: unknown source %q", alias)
	}
	r.UnregisterSource(alias)
	return r.RegisterSource(ctx, src.resolvedPath, alias, true)
}

// Get returns the entry for name, if any.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	return e, ok
}

// GetAll returns every registered entry.
func (r *Registry) GetAll() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// ListSources returns every registered source key.
func (r *Registry) ListSources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sources))
	for k := range r.sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ListSkills returns every registered skill name, sorted.
func (r *Registry) ListSkills() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Search does a case-insensitive substring match over the given fields
// (defaulting to name, description, usage).
func (r *Registry) Search(keyword string, fields []string) []Entry {
	if len(fields) == 0 {
		fields = []string{"name", "description", "usage"}
	}
	needle := strings.ToLower(keyword)

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for _, e := range r.entries {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(fieldValue(e, f)), needle) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// GetByRegex compiles pattern and matches it against the given field
// (name, description, usage, or type) of every entry.
func (r *Registry) GetByRegex(pattern, field string) ([]Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("skill: compile regex %q: %w", pattern, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for _, e := range r.entries {
		if re.MatchString(fieldValue(e, field)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func fieldValue(e Entry, field string) string {
	switch field {
	case "name":
		return e.Name
	case "description":
		return e.Description
	case "usage":
		return e.Usage
	case "type":
		return e.Type
	default:
		return ""
	}
}

// GetSkillConfigs projects every entry into its Config view, keyed by
// name.
func (r *Registry) GetSkillConfigs() map[string]Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Config, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.Config()
	}
	return out
}

// UpdateCache re-resolves and reloads every source whose key names a git
// reference (left to the caller to distinguish, since the registry does
// not retain the original unresolved ref once registered). Callers that
// know which aliases are git-backed should pass them explicitly; alias =
// "" updates every known source.
func (r *Registry) UpdateCache(ctx context.Context, alias string) error {
	r.mu.Lock()
	aliases := []string{alias}
	if alias == "" {
		aliases = aliases[:0]
		for k := range r.sources {
			aliases = append(aliases, k)
		}
	}
	r.mu.Unlock()

	for _, a := range aliases {
		if _, err := r.ReloadSource(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// walkSkillFiles recursively finds skill.md / SKILL.md files under root.
func walkSkillFiles(root string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base == "skill.md" || base == "SKILL.md" {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// parseSkillFile parses one skill.md/SKILL.md file into an Entry. The
// skill name defaults to the containing directory's basename.
func parseSkillFile(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}

	fm, bodyStart := frontmatter.ParseFrontMatter(string(data))
	body := frontmatter.Body(string(data), bodyStart)

	name := filepath.Base(filepath.Dir(path))
	if n, ok := fm["name"].(string); ok && n != "" {
		name = n
	}

	e := Entry{
		Name:       name,
		Usage:      strings.TrimSpace(body),
		SourcePath: path,
		Active:     true,
	}
	if d, ok := fm["description"].(string); ok {
		e.Description = d
	} else if d, ok := fm["desc"].(string); ok {
		e.Description = d
	}
	if t, ok := fm["type"].(string); ok {
		e.Type = t
	}
	if tl, ok := fm["tool_list"].(map[string]any); ok {
		e.ToolList = toToolList(tl)
	}
	if active, ok := fm["active"].(string); ok {
		e.Active = active != "false"
	}

	return e, nil
}

func toToolList(raw map[string]any) map[string][]string {
	out := make(map[string][]string, len(raw))
	for server, v := range raw {
		switch list := v.(type) {
		case []any:
			names := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok {
					names = append(names, s)
				}
			}
			out[server] = names
		case string:
			out[server] = strings.Split(list, ",")
		default:
			out[server] = nil
		}
	}
	return out
}
