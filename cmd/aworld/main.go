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

// Command aworld orchestrates heterogeneous agents loaded from plugins,
// local directories, or remote backends, and runs batch jobs against them.
//
// Usage:
//
//	aworld list --agent-dir ./agents
//	aworld batch-job job.yaml --parallel 4
//	aworld task --agent assistant --prompt "summarize this"
package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// CLI defines the command-line interface.
type CLI struct {
	List     ListCmd     `cmd:"" help:"List agents visible across plugin, local, and remote sources."`
	BatchJob BatchJobCmd `cmd:"" name:"batch-job" aliases:"batch" help:"Run a batch job against a tabular input file."`
	Task     TaskCmd     `cmd:"" help:"Run a single prompt against one agent."`
	Validate ValidateCmd `cmd:"" help:"Validate a batch-job configuration file."`
	Schema   SchemaCmd   `cmd:"" help:"Generate JSON Schema for the batch-job configuration."`

	AgentDir      []string `name:"agent-dir" help:"Local agent directory to load from (repeatable)."`
	AgentFile     []string `name:"agent-file" help:"Markdown agent file to load directly (repeatable)."`
	RemoteBackend []string `name:"remote-backend" help:"Remote agent backend base URL (repeatable)."`
	SkillPath     []string `name:"skill-path" help:"Additional skill source to register (repeatable)."`
	SessionID     string   `name:"session-id" help:"Session id to resume; a new one is created when empty."`

	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple, verbose, or custom)." default:"simple"`
}

func main() {
	_ = godotenv.Load()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("aworld"),
		kong.Description("aworld - heterogeneous agent orchestrator and batch runner"),
		kong.UsageOnError(),
	)

	cleanup, err := initLogger(cli.LogLevel, cli.LogFile, cli.LogFormat)
	ctx.FatalIfErrorf(err)
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
