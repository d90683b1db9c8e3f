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

// Package skill catalogs reusable "skills" aggregated from local
// directories and remote git repositories, with cache-on-disk semantics,
// name-collision resolution, and regex/keyword lookup.
package skill

// Entry is a single cataloged skill.
type Entry struct {
	Name        string
	Description string
	Usage       string
	Type        string
	Active      bool
	// ToolList maps an MCP server name to the list of allowed tool names;
	// an empty list means all tools on that server are allowed.
	ToolList   map[string][]string
	SourcePath string
}

// IsAgentic reports whether this entry is distinguished as an "agentic
// skill" (Type == "agent").
func (e Entry) IsAgentic() bool { return e.Type == "agent" }

// Config is the projection get_skill_configs() produces: name, desc,
// usage, tool-list, type, active — everything a descriptor needs to bind
// a skill without touching the registry again.
type Config struct {
	Name        string
	Description string
	Usage       string
	ToolList    map[string][]string
	Type        string
	Active      bool
}

// Config projects this entry into its Config view.
func (e Entry) Config() Config {
	return Config{
		Name:        e.Name,
		Description: e.Description,
		Usage:       e.Usage,
		ToolList:    e.ToolList,
		Type:        e.Type,
		Active:      e.Active,
	}
}

// source tracks one registered skill source and the skill names it
// contributed, so unregistration only removes skills still attributed to
// it.
type source struct {
	key          string
	resolvedPath string
	skillNames   []string
}

// ConflictPolicy controls what happens when two sources contribute a skill
// with the same name.
type ConflictPolicy int

const (
	// KeepFirst (default): the first registration wins; later ones are
	// dropped with a warning.
	KeepFirst ConflictPolicy = iota
	// KeepLast: the later registration replaces the earlier one and takes
	// over its contribution attribution.
	KeepLast
	// Raise: a collision fails the whole register_source call.
	Raise
)
