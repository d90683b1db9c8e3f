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

// Package localrun translates an agent descriptor into a running
// in-process agent and chats with it, using the retained agent
// execution runtime's own runner.Runner (pkg/runner) the way
// pkg/runtime.RunnerConfig wires one up for the HTTP server — the
// difference here is that the swarm comes from a cached descriptor
// build (pkg/agentregistry) instead of a full YAML-driven
// pkg/runtime.Runtime.
package localrun

import (
	"context"
	"fmt"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"

	"github.com/aworld-dev/aworld/pkg/agent"
	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/hooks"
	"github.com/aworld-dev/aworld/pkg/runner"
	"github.com/aworld-dev/aworld/pkg/session"
)

// ContextConfig is the opaque configuration handed to a descriptor's
// swarm-builder. The default profile is "debug-on", matching the
// teacher's own zero-config server defaults (verbose logging enabled
// unless a caller configures otherwise).
type ContextConfig struct {
	Profile      string
	HistoryScope string
	UserID       string
	SessionID    string
	TaskID       string
	BuiltAt      time.Time
}

func defaultContextConfig(sessionID string) ContextConfig {
	return ContextConfig{
		Profile:      "debug-on",
		HistoryScope: "session",
		SessionID:    sessionID,
	}
}

// syntheticContextConfig is retried when building against
// defaultContextConfig fails — it stands in for "the builder required a
// context and we had to manufacture one," matching the source runtime's
// no-arg-then-context-arg retry. Go's SwarmBuilder signature always
// accepts a context value, so the two attempts differ only in how
// fleshed-out that value is.
func syntheticContextConfig() ContextConfig {
	now := time.Now()
	return ContextConfig{
		Profile:      "debug-on",
		HistoryScope: "session",
		UserID:       "user_" + uuid.New().String(),
		SessionID:    "session_" + uuid.New().String(),
		TaskID:       "task_" + uuid.New().String(),
		BuiltAt:      now,
	}
}

// Executor wraps one built swarm with the runtime's session/runner
// plumbing and the hook names a descriptor asked for.
type Executor struct {
	descriptor *agentregistry.Descriptor
	runner     *runner.Runner
	userID     string
	sessionID  string
	hookNames  []string
}

// New resolves name (and optional version) from reg, builds its swarm
// (retrying with a synthetic context config if the default one fails),
// and wraps it in a Runner backed by an in-memory session service.
func New(ctx context.Context, reg *agentregistry.Registry, name, version, sessionID string) (*Executor, error) {
	desc, ok := reg.Get(name, version)
	if !ok {
		return nil, fmt.Errorf("localrun: agent %q not found", name)
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if desc.ContextConfig == nil {
		desc.ContextConfig = defaultContextConfig(sessionID)
	}

	hookState := map[string]any{"agent": name, "session_id": sessionID}
	runHookPoint(hooks.PreBuildContext, desc.Hooks, hookState)

	swarm, err := desc.Build(ctx)
	if err != nil {
		desc.ContextConfig = syntheticContextConfig()
		swarm, err = desc.Build(ctx)
		if err != nil {
			return nil, fmt.Errorf("localrun: build swarm for %q: %w", name, err)
		}
	}
	runHookPoint(hooks.PostBuildContext, desc.Hooks, hookState)

	r, err := runner.New(runner.Config{
		AppName:        name,
		Agent:          swarm,
		SessionService: session.InMemoryService(),
	})
	if err != nil {
		return nil, fmt.Errorf("localrun: build runner for %q: %w", name, err)
	}

	return &Executor{
		descriptor: desc,
		runner:     r,
		userID:     "user_" + sessionID,
		sessionID:  sessionID,
		hookNames:  desc.Hooks,
	}, nil
}

// Response is one chat turn's outcome.
type Response struct {
	Text string
}

// Chat runs one user turn against the wrapped swarm and returns the
// concatenated text of every non-partial assistant event, in order.
// taskID is optional context carried through hook state only; the
// retained runtime's own session/task bookkeeping is untouched by it.
func (e *Executor) Chat(ctx context.Context, prompt string, taskID string) (Response, error) {
	state := map[string]any{"agent": e.descriptor.Name, "task_id": taskID, "prompt": prompt}

	runHookPoint(hooks.PreInputParse, e.hookNames, state)
	runHookPoint(hooks.PostInputParse, nil, state) // FileParseHook always present here
	runHookPoint(hooks.PreBuildTask, e.hookNames, state)
	runHookPoint(hooks.PostBuildTask, e.hookNames, state)
	runHookPoint(hooks.PreRunTask, e.hookNames, state)

	content := agent.NewTextContent(prompt, a2a.MessageRoleUser)

	var text string
	for event, err := range e.runner.Run(ctx, e.userID, e.sessionID, content, agent.RunConfig{}) {
		if err != nil {
			runHookPoint(hooks.OnTaskError, e.hookNames, state)
			return Response{Text: text}, fmt.Errorf("localrun: run %q: %w", e.descriptor.Name, err)
		}
		if event.Partial {
			continue
		}
		text += event.TextContent()
	}

	runHookPoint(hooks.PostRunTask, e.hookNames, state)
	return Response{Text: text}, nil
}

func runHookPoint(point hooks.Point, names []string, state map[string]any) {
	fns := hooks.ResolveAll(point)
	if names != nil {
		fns = hooks.Resolve(point, names)
	}
	for _, fn := range fns {
		_ = fn(state)
	}
}
