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

// Package multisource drives the per-lifecycle plugin -> local -> remote
// agent loading order and merges the results with a deterministic
// precedence policy. It composes pkg/codeagent, pkg/mdagent, and
// pkg/remoteproto the way cmd/hector/mode.go composes pkg/runtime's own
// config-driven agent set, except here each source contributes
// independently instead of from one parsed config tree.
package multisource

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/codeagent"
	"github.com/aworld-dev/aworld/pkg/mdagent"
	"github.com/aworld-dev/aworld/pkg/remoteproto"
	"github.com/aworld-dev/aworld/pkg/skill"
)

// SourceType distinguishes where an AgentInfo was resolved from.
type SourceType string

const (
	SourcePlugin SourceType = "plugin"
	SourceLocal  SourceType = "local"
	SourceRemote SourceType = "remote"
)

// innerPluginsMarker is the stable-contract substring (spec.md's Open
// Question on plugin path layout, resolved as "stable") that a plugin
// agent's RegisterDir must contain to be admitted in the plugin phase.
const innerPluginsMarker = "inner_plugins"

// AgentInfo is a thin view over a registered descriptor (or a remote
// listing entry) surfacing just what the loader's precedence policy and
// callers like "list" need.
type AgentInfo struct {
	Name           string
	Description    string
	SourceType     SourceType
	SourceLocation string
	Metadata       map[string]any
}

// SourceMeta is the auxiliary per-name record the dispatcher consults to
// decide how to build an executor for a resolved agent.
type SourceMeta struct {
	Type      SourceType
	Location  string
	AgentsDir string // set for local/plugin; empty for remote
}

// Config configures one Load call.
type Config struct {
	// PluginRoots are plugin directories, each expected to hold an
	// "agents" and/or "skills" subdirectory, e.g.
	// ~/.aworld/plugins/<plugin-name>.
	PluginRoots []string
	// LocalDirs are directories to scan for code- and markdown-defined
	// agents, in order.
	LocalDirs []string
	// RemoteBackends are base URLs of remote agent backends, in order.
	RemoteBackends []string

	Registry *agentregistry.Registry
	Skills   *skill.Registry
}

// Load runs the plugin, local, and remote phases in strict order,
// registering plugin- and local-sourced descriptors into cfg.Registry,
// and returns the deduplicated, precedence-resolved agent list plus the
// auxiliary source map.
func Load(ctx context.Context, cfg Config) ([]AgentInfo, map[string]SourceMeta, error) {
	l := &loader{cfg: cfg, meta: make(map[string]SourceMeta)}

	l.pluginPhase(ctx)
	l.localPhase(ctx)
	l.remotePhase(ctx)

	out := make([]AgentInfo, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.byName[name])
	}
	return out, l.meta, nil
}

type loader struct {
	cfg Config

	order  []string
	byName map[string]AgentInfo
	meta   map[string]SourceMeta
}

// insert applies the precedence/dedup policy from spec.md section 4.6:
// first observation of a name inserts it; later observations replace
// only when the new source outranks the existing one (local beats
// remote/plugin; plugin never replaces local/remote; remote never
// replaces anything); duplicates within the same phase keep the first.
func (l *loader) insert(info AgentInfo, meta SourceMeta) {
	if l.byName == nil {
		l.byName = make(map[string]AgentInfo)
	}

	existing, ok := l.byName[info.Name]
	if !ok {
		l.byName[info.Name] = info
		l.meta[info.Name] = meta
		l.order = append(l.order, info.Name)
		return
	}

	if outranks(info.SourceType, existing.SourceType) {
		l.byName[info.Name] = info
		l.meta[info.Name] = meta
	}
}

// outranks reports whether candidate replaces current under the
// precedence policy: local > {remote, plugin}; plugin and remote never
// replace anything (including each other, and including a second entry
// of their own type, which is handled by the caller's "first in phase
// wins" behavior rather than this function).
func outranks(candidate, current SourceType) bool {
	return candidate == SourceLocal && current != SourceLocal
}

// pluginPhase registers each plugin's skills directory (iff it contains
// at least one SKILL.md-bearing subdirectory) and runs the code-agent
// loader against each plugin's agents directory, admitting only
// descriptors whose RegisterDir is rooted under an "inner_plugins" tree.
func (l *loader) pluginPhase(ctx context.Context) {
	for _, root := range l.cfg.PluginRoots {
		pluginName := filepath.Base(root)
		skillsDir := filepath.Join(root, "skills")
		if hasSkillDoc(skillsDir) && l.cfg.Skills != nil {
			if _, err := l.cfg.Skills.RegisterSource(ctx, skillsDir, "plugin:"+pluginName, false); err != nil {
				slog.Warn("multisource: failed to register plugin skills", "plugin", pluginName, "error", err)
			}
		}

		agentsDir := filepath.Join(root, "agents")
		descriptors, err := codeagent.Discover(agentsDir)
		if err != nil {
			slog.Warn("multisource: plugin agent discovery failed", "plugin", pluginName, "error", err)
			continue
		}
		for _, d := range descriptors {
			if !strings.Contains(d.RegisterDir, innerPluginsMarker) {
				continue
			}
			if l.cfg.Registry != nil {
				if err := l.cfg.Registry.Register(d); err != nil {
					slog.Warn("multisource: failed to register plugin agent", "name", d.Name, "error", err)
					continue
				}
			}
			l.insert(AgentInfo{
				Name:           d.Name,
				Description:    d.Description,
				SourceType:     SourcePlugin,
				SourceLocation: root,
				Metadata:       d.Metadata,
			}, SourceMeta{Type: SourcePlugin, Location: root, AgentsDir: agentsDir})
		}
	}
}

// localPhase runs both the code-agent loader and a markdown sweep over
// each configured local directory.
func (l *loader) localPhase(ctx context.Context) {
	for _, dir := range l.cfg.LocalDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		descriptors, err := codeagent.Discover(dir)
		if err != nil {
			slog.Warn("multisource: local agent discovery failed", "dir", dir, "error", err)
		}
		for _, d := range descriptors {
			l.registerLocal(d, dir)
		}

		mdFiles := findMarkdownFiles(dir)
		for _, path := range mdFiles {
			d := mdagent.ParseFile(path, l.cfg.Skills)
			if d == nil {
				continue
			}
			l.registerLocal(d, dir)
		}
	}
}

func (l *loader) registerLocal(d *agentregistry.Descriptor, dir string) {
	if l.cfg.Registry != nil {
		if err := l.cfg.Registry.Register(d); err != nil {
			slog.Warn("multisource: failed to register local agent", "name", d.Name, "error", err)
			return
		}
	}
	l.insert(AgentInfo{
		Name:           d.Name,
		Description:    d.Description,
		SourceType:     SourceLocal,
		SourceLocation: dir,
		Metadata:       d.Metadata,
	}, SourceMeta{Type: SourceLocal, Location: dir, AgentsDir: dir})
}

// remotePhase calls GET /agents on each configured backend, preserving
// server-returned order within a backend.
func (l *loader) remotePhase(ctx context.Context) {
	for _, url := range l.cfg.RemoteBackends {
		client := remoteproto.NewClient(url)
		agents, err := client.ListAgents(ctx)
		if err != nil {
			slog.Warn("multisource: remote agent listing failed", "backend", url, "error", err)
			continue
		}
		for _, a := range agents {
			l.insert(AgentInfo{
				Name:           a.Name,
				Description:    a.Description,
				SourceType:     SourceRemote,
				SourceLocation: url,
				Metadata:       a.Metadata,
			}, SourceMeta{Type: SourceRemote, Location: url})
		}
	}
}

// hasSkillDoc reports whether dir contains at least one subdirectory
// holding a skill.md or SKILL.md file.
func hasSkillDoc(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if fileExists(filepath.Join(sub, "skill.md")) || fileExists(filepath.Join(sub, "SKILL.md")) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// findMarkdownFiles walks dir for *.md files, sorted for deterministic
// ordering across runs.
func findMarkdownFiles(dir string) []string {
	var out []string
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".md") {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}
