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

package mdagent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/frontmatter"
	"github.com/aworld-dev/aworld/pkg/skill"
	"github.com/aworld-dev/aworld/pkg/tool"
	"github.com/aworld-dev/aworld/pkg/tool/mcptoolset"
)

var versionDirPattern = regexp.MustCompile(`_v(\d+)$`)

// ParseFile parses one markdown agent document into a registerable
// descriptor. Any parse-stage failure yields (nil, nil) with a logged
// warning — never fatal for the caller.
func ParseFile(path string, skills *skill.Registry) *agentregistry.Descriptor {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("mdagent: failed to read agent file", "path", path, "error", err)
		return nil
	}

	fm, bodyStart := frontmatter.ParseFrontMatter(string(data))
	name, _ := fm["name"].(string)
	if name == "" {
		slog.Warn("mdagent: agent file missing required 'name' field", "path", path)
		return nil
	}

	dir := filepath.Dir(path)
	if skills != nil {
		registerSiblingSkills(dir, skills)
	}

	description := stringField(fm, "description", "desc")
	body := frontmatter.Body(string(data), bodyStart)
	systemPrompt := composeSystemPrompt(description, body)

	toolList := parseToolList(fm["tool_list"])
	mcpServers := coerceStringList(fm["mcp_servers"])
	mcpConfig, err := resolveMCPConfig(fm["mcp_config"], dir)
	if err != nil {
		slog.Warn("mdagent: failed to resolve mcp_config", "path", path, "error", err)
	}
	if len(mcpServers) == 0 && mcpConfig != nil {
		mcpServers = mcpServerNames(mcpConfig)
	}
	ptcTools := coerceStringList(fm["ptc_tools"])

	var skillConfigs map[string]skill.Config
	if skills != nil {
		if sp, ok := fm["skills_path"].(string); ok && sp != "" {
			registerExtraSkillPaths(sp, dir, skills)
		}
		if sn, ok := fm["skill_names"].(string); ok && sn != "" {
			skillConfigs = resolveSkillNames(sn, skills)
		}
	}

	toolsets := mcpToolsets(mcpServers, mcpConfig)

	version := deriveVersion(fm, dir)

	metadata := map[string]any{
		"source":        "markdown",
		"file_path":     path,
		"tool_list":     toolList,
		"mcp_servers":   mcpServers,
		"mcp_config":    mcpConfig,
		"ptc_tools":     ptcTools,
		"skills_path":   fm["skills_path"],
		"skill_names":   fm["skill_names"],
		"skill_configs": skillConfigs,
	}
	if version != "" {
		metadata["version"] = version
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	return &agentregistry.Descriptor{
		Name:        name,
		Description: description,
		Version:     version,
		Builder:     NewSwarmBuilder(name, systemPrompt, toolsets),
		RegisterDir: absDir,
		SourceFile:  absPath,
		Metadata:    metadata,
	}
}

func stringField(fm map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := fm[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func composeSystemPrompt(description, body string) string {
	body = strings.TrimSpace(body)
	switch {
	case description != "" && body != "":
		return description + "\n\n" + body
	case description != "":
		return description
	case body != "":
		return body
	default:
		return "You are a helpful AI agent."
	}
}

// registerSiblingSkills auto-registers <dir>/../skills, best effort.
func registerSiblingSkills(dir string, skills *skill.Registry) {
	siblingSkills := filepath.Join(dir, "..", "skills")
	if info, err := os.Stat(siblingSkills); err == nil && info.IsDir() {
		if _, err := skills.RegisterSource(context.Background(), siblingSkills, siblingSkills, false); err != nil {
			slog.Warn("mdagent: failed to auto-register sibling skills", "path", siblingSkills, "error", err)
		}
	}
}

func registerExtraSkillPaths(raw, dir string, skills *skill.Registry) {
	for _, p := range strings.Split(raw, ";") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) && !strings.Contains(p, "://") {
			p = filepath.Join(dir, p)
		}
		if _, err := skills.RegisterSource(context.Background(), p, p, false); err != nil {
			slog.Warn("mdagent: failed to register skills_path entry", "path", p, "error", err)
		}
	}
}

func resolveSkillNames(raw string, skills *skill.Registry) map[string]skill.Config {
	out := make(map[string]skill.Config)
	for _, token := range strings.Split(raw, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if rest, isRegex := strings.CutPrefix(token, "regex:"); isRegex {
			entries, err := skills.GetByRegex(rest, "name")
			if err != nil {
				slog.Warn("mdagent: bad skill_names regex", "pattern", rest, "error", err)
				continue
			}
			for _, e := range entries {
				out[e.Name] = e.Config()
			}
			continue
		}
		if e, ok := skills.Get(token); ok {
			out[e.Name] = e.Config()
		}
	}
	return out
}

// parseToolList normalizes the tool_list front-matter value: a mapping
// from MCP server name to a tool-name list.
func parseToolList(raw any) map[string][]string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(m))
	for server, v := range m {
		out[server] = coerceStringList(v)
	}
	return out
}

// coerceStringList accepts a JSON array, a comma-separated string, or a
// bare scalar, and normalizes to a string slice.
func coerceStringList(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		if strings.Contains(v, ",") {
			parts := strings.Split(v, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
		return []string{v}
	default:
		return nil
	}
}

// resolveMCPConfig handles mcp_config as inline JSON, or a path to a
// .json file (relative paths resolve against dir).
func resolveMCPConfig(raw any, dir string) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		path := v
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if strings.HasSuffix(path, ".json") {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read mcp_config file: %w", err)
			}
			var cfg map[string]any
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse mcp_config file: %w", err)
			}
			return cfg, nil
		}
		var cfg map[string]any
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return nil, fmt.Errorf("parse inline mcp_config: %w", err)
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("unsupported mcp_config value type %T", raw)
	}
}

func mcpServerNames(cfg map[string]any) []string {
	servers, ok := cfg["mcpServers"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	return names
}

// mcpToolsets builds one mcptoolset.Toolset per named server found in
// cfg["mcpServers"].
func mcpToolsets(names []string, cfg map[string]any) []tool.Toolset {
	if cfg == nil {
		return nil
	}
	servers, ok := cfg["mcpServers"].(map[string]any)
	if !ok {
		return nil
	}

	var out []tool.Toolset
	for _, name := range names {
		raw, ok := servers[name].(map[string]any)
		if !ok {
			continue
		}
		mcfg := mcptoolset.Config{Name: name}
		if command, ok := raw["command"].(string); ok {
			mcfg.Command = command
		}
		if args, ok := raw["args"].([]any); ok {
			for _, a := range args {
				if s, ok := a.(string); ok {
					mcfg.Args = append(mcfg.Args, s)
				}
			}
		}
		if url, ok := raw["url"].(string); ok {
			mcfg.URL = url
		}
		ts, err := mcptoolset.New(mcfg)
		if err != nil {
			slog.Warn("mdagent: failed to build mcp toolset", "server", name, "error", err)
			continue
		}
		out = append(out, ts)
	}
	return out
}

// deriveVersion uses metadata.version if present, else the <base>_v<N>
// suffix of the register directory.
func deriveVersion(fm map[string]any, dir string) string {
	if v, ok := fm["version"].(string); ok && v != "" {
		return v
	}
	base := filepath.Base(dir)
	if m := versionDirPattern.FindStringSubmatch(base); m != nil {
		return "v" + m[1]
	}
	return ""
}
