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

package batch

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/digest"
	"github.com/aworld-dev/aworld/pkg/localrun"
	"github.com/aworld-dev/aworld/pkg/multisource"
	"github.com/aworld-dev/aworld/pkg/ratelimit"
	"github.com/aworld-dev/aworld/pkg/remoteproto"
	"github.com/aworld-dev/aworld/pkg/tabular"
	"github.com/aworld-dev/aworld/pkg/task"
)

// rateLimitIdentifier is the single dispatch-wide identifier a job's
// rate limiter tracks usage under; a job has one shared budget, not a
// per-record one.
const rateLimitIdentifier = "job"

// newRateLimiter builds a ratelimit.RateLimiter from cfg's rate_limit
// block, or nil if none was configured.
func newRateLimiter(cfg JobConfig) (ratelimit.RateLimiter, error) {
	if cfg.Execution.RateLimit == nil || cfg.Execution.RateLimit.RequestsPerMinute <= 0 {
		return nil, nil
	}
	return ratelimit.NewRateLimiter(&ratelimit.Config{
		Enabled: true,
		Limits: []ratelimit.LimitRule{
			{Type: ratelimit.LimitTypeCount, Window: ratelimit.WindowMinute, Limit: cfg.Execution.RateLimit.RequestsPerMinute},
		},
	}, ratelimit.NewMemoryStore())
}

// waitForSlot blocks until limiter admits one more request, honoring
// ctx cancellation and the CheckResult's own RetryAfter hint.
func waitForSlot(ctx context.Context, limiter ratelimit.RateLimiter) error {
	if limiter == nil {
		return nil
	}
	for {
		result, err := limiter.CheckAndRecord(ctx, ratelimit.ScopeUser, rateLimitIdentifier, 0, 1)
		if err != nil {
			return err
		}
		if result.Allowed {
			return nil
		}
		wait := time.Second
		if result.RetryAfter != nil {
			wait = *result.RetryAfter
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Summary is the batch-job outcome spec.md §4.9 asks the CLI to print
// and, where digest_log is configured, the aggregated telemetry
// alongside it.
type Summary struct {
	Total        int
	SuccessCount int
	FailureCount int
	TotalCost    float64
	Duration     time.Duration
	OutputPath   string
	Digest       *digest.Report

	// Tasks tracks every record's A2A task lifecycle (submitted ->
	// working -> completed/failed), keyed by the record's own task.Task
	// ID, independent of the remoteproto task-id used for dispatch
	// headers and digest-log filtering.
	Tasks *task.InMemoryService
}

// dispatch resolves whether a job's agent runs locally or against a
// remote backend, and if remote, which base URL.
type dispatchTarget struct {
	remote    bool
	remoteURL string
}

// resolveDispatch applies spec.md's resolution order: an explicit
// remote-backend override (CLI flag or agent.remote_backend) always
// wins; otherwise the agent's source meta from a prior multisource.Load
// decides; absent meta, the local registry is consulted directly.
func resolveDispatch(cfg JobConfig, remoteOverride string, meta map[string]multisource.SourceMeta, reg *agentregistry.Registry) (dispatchTarget, error) {
	if remoteOverride != "" {
		return dispatchTarget{remote: true, remoteURL: remoteOverride}, nil
	}
	if cfg.Agent.RemoteBackend != "" {
		return dispatchTarget{remote: true, remoteURL: cfg.Agent.RemoteBackend}, nil
	}
	if m, ok := meta[cfg.Agent.Name]; ok && m.Type == multisource.SourceRemote {
		return dispatchTarget{remote: true, remoteURL: m.Location}, nil
	}
	if reg != nil {
		if _, ok := reg.Get(cfg.Agent.Name, ""); ok {
			return dispatchTarget{remote: false}, nil
		}
	}
	return dispatchTarget{}, fmt.Errorf("%w: %q", ErrAgentNotFound, cfg.Agent.Name)
}

// Run executes cfg's job: every record from cfg.Input is dispatched
// through a fresh executor with concurrency bounded by
// cfg.Execution.Parallel, and every result is written to cfg.Output as
// soon as it completes. remoteOverride, if non-empty, overrides
// cfg.Agent.RemoteBackend (the CLI's --remote-backend flag).
func Run(ctx context.Context, cfg JobConfig, reg *agentregistry.Registry, meta map[string]multisource.SourceMeta, remoteOverride string) (Summary, error) {
	start := time.Now()

	target, err := resolveDispatch(cfg, remoteOverride, meta, reg)
	if err != nil {
		return Summary{}, err
	}
	slog.Info("batch: starting job", "agent", cfg.Agent.Name, "remote", target.remote, "parallel", cfg.Execution.Parallel)

	source, err := tabular.Open(tabular.SourceConfig{
		Path:        cfg.Input.Path,
		QueryColumn: cfg.Input.QueryColumn,
		Encoding:    cfg.Input.Encoding,
		Delimiter:   cfg.Input.Delimiter,
	})
	if err != nil {
		return Summary{}, err
	}
	records, err := source.ReadAll()
	source.Close()
	if err != nil {
		return Summary{}, err
	}

	sink, err := tabular.NewSink(tabular.SinkConfig{
		Path:      cfg.Output.Path,
		Encoding:  cfg.Output.Encoding,
		Delimiter: cfg.Output.Delimiter,
	})
	if err != nil {
		return Summary{}, err
	}

	limiter, err := newRateLimiter(cfg)
	if err != nil {
		return Summary{}, fmt.Errorf("batch: configure rate limit: %w", err)
	}

	taskSvc := task.NewInMemoryService()

	sem := semaphore.NewWeighted(int64(cfg.Execution.Parallel))
	var wg sync.WaitGroup
	var taskIDsMu sync.Mutex
	taskIDs := make([]string, 0, len(records))

	for _, rec := range records {
		rec := rec
		if err := sem.Acquire(ctx, 1); err != nil {
			break // context canceled; stop dispatching new tasks
		}
		if err := waitForSlot(ctx, limiter); err != nil {
			sem.Release(1)
			break
		}
		lifecycle, _ := taskSvc.Create(ctx, cfg.Output.Path)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			lifecycle.SetStatus(task.StateWorking, nil, nil)

			result, taskID := runOne(ctx, cfg, target, reg, rec)

			if result.Success {
				lifecycle.SetStatus(task.StateCompleted, nil, nil)
			} else {
				lifecycle.SetStatus(task.StateFailed, nil, errors.New(result.Error))
			}

			taskIDsMu.Lock()
			taskIDs = append(taskIDs, taskID)
			taskIDsMu.Unlock()

			if err := sink.Write(result); err != nil {
				slog.Error("batch: failed to write result", "record_id", result.RecordID, "error", err)
			}
		}()
	}
	wg.Wait()

	stats := sink.Finalize()

	summary := Summary{
		Total:        stats.Total,
		SuccessCount: stats.SuccessCount,
		FailureCount: stats.FailureCount,
		TotalCost:    stats.TotalCost,
		Duration:     time.Since(start),
		OutputPath:   stats.OutputPath,
		Tasks:        taskSvc,
	}

	if cfg.DigestLog != nil {
		var filter map[string]bool
		if target.remote {
			filter = make(map[string]bool, len(taskIDs))
			for _, id := range taskIDs {
				filter[id] = true
			}
		}
		report, _, err := digest.ReadFile(cfg.DigestLog.Path, 0, filter)
		if err == nil {
			summary.Digest = &report
		}
	}

	slog.Info("batch: job finished", "total", summary.Total, "succeeded", summary.SuccessCount, "failed", summary.FailureCount, "duration", summary.Duration)
	return summary, nil
}

// runOne dispatches a single record, returning its tabular.Result and
// the task-id it was assigned (needed for digest-log filtering).
func runOne(ctx context.Context, cfg JobConfig, target dispatchTarget, reg *agentregistry.Registry, rec tabular.Record) (tabular.Result, string) {
	recordID := rec[tabular.RowIDColumn]
	taskID := newTaskID(recordID)
	prompt := rec[cfg.Input.QueryColumn]

	taskCtx := ctx
	var cancel context.CancelFunc
	if cfg.Execution.TimeoutPerTask != nil {
		taskCtx, cancel = context.WithTimeout(ctx, time.Duration(*cfg.Execution.TimeoutPerTask)*time.Second)
		defer cancel()
	}

	start := time.Now()
	text, usage, err := dispatchChat(taskCtx, cfg, target, reg, prompt, taskID)
	latency := time.Since(start).Seconds()

	result := tabular.Result{
		RecordID:       recordID,
		OriginalRecord: rec,
		TaskID:         taskID,
		LatencySeconds: latency,
	}

	switch {
	case err != nil && cfg.Execution.TimeoutPerTask != nil && errors.Is(err, context.DeadlineExceeded):
		result.Success = false
		result.Error = fmt.Sprintf("Timeout after %ds", *cfg.Execution.TimeoutPerTask)
	case err != nil:
		result.Success = false
		result.Error = err.Error()
	default:
		result.Success = true
		result.Response = text
	}

	if usage != nil {
		result.HasMetrics = true
		result.Cost = usage.Cost
		total := usage.TotalTokens
		if total == 0 {
			total = usage.InputTokens + usage.OutputTokens
		}
		result.Tokens = total
	}

	return result, taskID
}

// dispatchChat runs one chat turn against a fresh executor, local or
// remote per target, and returns the response text plus whatever usage
// accounting was available (nil for local — see DESIGN.md's cost-field
// gap note).
func dispatchChat(ctx context.Context, cfg JobConfig, target dispatchTarget, reg *agentregistry.Registry, prompt, taskID string) (string, *remoteproto.Usage, error) {
	if target.remote {
		client := remoteproto.NewClient(target.remoteURL)
		req := remoteproto.ChatRequest{
			Model: cfg.Agent.Name,
			Messages: []remoteproto.ChatMessage{
				{Role: "user", Content: remoteproto.BuildContent(prompt)},
			},
		}
		headers := remoteproto.RequestHeaders{
			SessionID: uuid.New().String(),
			TaskID:    taskID,
		}
		result, err := client.ChatStream(ctx, req, headers, remoteproto.NoopPresenter{})
		return result.Text, result.Usage, err
	}

	executor, err := localrun.New(ctx, reg, cfg.Agent.Name, "", uuid.New().String())
	if err != nil {
		return "", nil, err
	}
	resp, err := executor.Chat(ctx, prompt, taskID)
	return resp.Text, nil, err
}

// newTaskID generates "batch_<record-id>_<8 hex chars>".
func newTaskID(recordID string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return "batch_" + recordID + "_" + hex.EncodeToString(buf)
}
