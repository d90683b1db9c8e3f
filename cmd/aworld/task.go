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

	"github.com/google/uuid"

	"github.com/aworld-dev/aworld/pkg/localrun"
	"github.com/aworld-dev/aworld/pkg/multisource"
	"github.com/aworld-dev/aworld/pkg/remoteproto"
)

// TaskCmd runs a single prompt against one agent, dispatching locally or
// to a remote backend depending on where the agent was discovered.
type TaskCmd struct {
	Agent  string `required:"" help:"Agent name to run."`
	Prompt string `required:"" help:"Prompt text to send."`
}

// Run executes the task command.
func (c *TaskCmd) Run(cli *CLI) error {
	ctx := context.Background()

	reg, _, _, meta, err := loadSources(ctx, cli)
	if err != nil {
		return err
	}

	taskID := "task_" + uuid.New().String()

	if m, ok := meta[c.Agent]; ok && m.Type == multisource.SourceRemote {
		client := remoteproto.NewClient(m.Location)
		req := remoteproto.ChatRequest{
			Model: c.Agent,
			Messages: []remoteproto.ChatMessage{
				{Role: "user", Content: remoteproto.BuildContent(c.Prompt)},
			},
		}
		headers := remoteproto.RequestHeaders{SessionID: sessionIDFor(cli), TaskID: taskID}
		result, err := client.ChatStream(ctx, req, headers, nil)
		if err != nil {
			return fmt.Errorf("aworld: task failed: %w", err)
		}
		fmt.Println(result.Text)
		return nil
	}

	executor, err := localrun.New(ctx, reg, c.Agent, "", sessionIDFor(cli))
	if err != nil {
		return fmt.Errorf("aworld: task failed: %w", err)
	}
	resp, err := executor.Chat(ctx, c.Prompt, taskID)
	if err != nil {
		return fmt.Errorf("aworld: task failed: %w", err)
	}
	fmt.Println(resp.Text)
	return nil
}

// sessionIDFor returns the CLI-supplied session id, or a fresh one.
func sessionIDFor(cli *CLI) string {
	if cli.SessionID != "" {
		return cli.SessionID
	}
	return uuid.New().String()
}
