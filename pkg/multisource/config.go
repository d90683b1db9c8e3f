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

package multisource

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/skill"
)

// FromEnv builds a Config the way cmd/aworld resolves its flags: an
// explicit agentDirs/remoteBackends list (from repeatable CLI flags)
// takes precedence; otherwise LOCAL_AGENTS_DIR/AGENTS_DIR
// (semicolon-separated) and REMOTE_AGENT_BACKEND/REMOTE_AGENTS_BACKEND
// are consulted, falling back to "./agents". Plugin roots always come
// from ~/.aworld/plugins (every installed plugin directory), since
// plugin discovery has no CLI override in spec.md.
func FromEnv(reg *agentregistry.Registry, skills *skill.Registry, agentDirs, remoteBackends []string) Config {
	cfg := Config{
		PluginRoots:    installedPluginRoots(),
		LocalDirs:      agentDirs,
		RemoteBackends: remoteBackends,
		Registry:       reg,
		Skills:         skills,
	}

	if len(cfg.LocalDirs) == 0 {
		cfg.LocalDirs = localAgentDirsFromEnv()
	}
	if len(cfg.RemoteBackends) == 0 {
		cfg.RemoteBackends = remoteBackendsFromEnv()
	}
	return cfg
}

func localAgentDirsFromEnv() []string {
	for _, key := range []string{"LOCAL_AGENTS_DIR", "AGENTS_DIR"} {
		if raw := os.Getenv(key); raw != "" {
			return splitSemicolon(raw)
		}
	}
	return []string{"./agents"}
}

func remoteBackendsFromEnv() []string {
	for _, key := range []string{"REMOTE_AGENT_BACKEND", "REMOTE_AGENTS_BACKEND"} {
		if raw := os.Getenv(key); raw != "" {
			return splitSemicolon(raw)
		}
	}
	return nil
}

// installedPluginRoots enumerates every directory under
// ~/.aworld/plugins, each one a candidate plugin root holding "agents"
// and/or "skills" subdirectories.
func installedPluginRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(home, ".aworld", "plugins")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(base, e.Name()))
		}
	}
	return out
}

func splitSemicolon(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
