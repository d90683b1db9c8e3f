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

	"github.com/aworld-dev/aworld/pkg/batch"
)

// BatchJobCmd runs a batch job described by a YAML config file against a
// tabular input, dispatching each record through the agent it names.
type BatchJobCmd struct {
	Config        string `arg:"" name:"config" help:"Batch job YAML file." placeholder:"PATH"`
	Parallel      int    `help:"Override execution.parallel from the config."`
	RemoteBackend string `name:"remote-backend" help:"Override the agent's remote backend for this run."`
}

// Run executes the batch-job command.
func (c *BatchJobCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := batch.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("aworld: %w", err)
	}
	if c.Parallel > 0 {
		cfg.Execution.Parallel = c.Parallel
	}

	remoteOverride := c.RemoteBackend
	if remoteOverride == "" && len(cli.RemoteBackend) > 0 {
		remoteOverride = cli.RemoteBackend[0]
	}

	reg, _, _, meta, err := loadSources(ctx, cli)
	if err != nil {
		return err
	}

	summary, err := batch.Run(ctx, *cfg, reg, meta, remoteOverride)
	if err != nil {
		return fmt.Errorf("aworld: batch job failed: %w", err)
	}

	fmt.Printf("Total:     %d\n", summary.Total)
	fmt.Printf("Succeeded: %d\n", summary.SuccessCount)
	fmt.Printf("Failed:    %d\n", summary.FailureCount)
	if summary.TotalCost > 0 {
		fmt.Printf("Cost:      %.4f\n", summary.TotalCost)
	}
	fmt.Printf("Duration:  %s\n", summary.Duration)
	fmt.Printf("Output:    %s\n", summary.OutputPath)

	if summary.Digest != nil {
		fmt.Println("\nDigest:")
		for agentName, stats := range summary.Digest.AgentRun.PerAgent {
			fmt.Printf("  %s: %d runs, avg %.2fs\n", agentName, stats.Count, stats.AvgDuration())
		}
	}

	return nil
}
