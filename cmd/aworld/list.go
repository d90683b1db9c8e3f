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

package main

import (
	"context"
	"fmt"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/mdagent"
	"github.com/aworld-dev/aworld/pkg/multisource"
	"github.com/aworld-dev/aworld/pkg/skill"
)

// ListCmd lists every agent visible across the plugin, local, and remote
// sources the global flags and environment name.
type ListCmd struct {
	Format string `short:"f" help:"Output format: table, json." default:"table" enum:"table,json"`
}

// loadSources builds the shared agentregistry/skill state used by list,
// task, and batch-job, applying the global --agent-dir/--agent-file/
// --remote-backend/--skill-path flags on top of multisource.FromEnv's
// environment-driven defaults.
func loadSources(ctx context.Context, cli *CLI) (*agentregistry.Registry, *skill.Registry, []multisource.AgentInfo, map[string]multisource.SourceMeta, error) {
	reg := agentregistry.New()
	skills := skill.Default(cli.SkillPath...)

	cfg := multisource.FromEnv(reg, skills, cli.AgentDir, cli.RemoteBackend)

	for _, file := range cli.AgentFile {
		desc := mdagent.ParseFile(file, skills)
		if desc == nil {
			return nil, nil, nil, nil, fmt.Errorf("aworld: parse agent file %q: failed", file)
		}
		if err := reg.Register(desc); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("aworld: register agent file %q: %w", file, err)
		}
	}

	agents, meta, err := multisource.Load(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return reg, skills, agents, meta, nil
}

// Run executes the list command.
func (c *ListCmd) Run(cli *CLI) error {
	ctx := context.Background()

	_, _, agents, _, err := loadSources(ctx, cli)
	if err != nil {
		return err
	}

	if len(agents) == 0 {
		fmt.Println("No agents found")
		return nil
	}

	for _, a := range agents {
		desc := a.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Printf("%-24s [%-6s] %s\n", a.Name, a.SourceType, desc)
		if a.SourceLocation != "" {
			fmt.Printf("%-24s           %s\n", "", a.SourceLocation)
		}
	}
	return nil
}
