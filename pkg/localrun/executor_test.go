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

package localrun

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aworld-dev/aworld/pkg/agent"
	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/hooks"
)

func echoAgent(t *testing.T, reply string) agent.Agent {
	t.Helper()
	a, err := agent.New(agent.Config{
		Name:        "echo",
		Description: "echoes a canned reply",
		Run: func(ctx agent.InvocationContext) iter.Seq2[*agent.Event, error] {
			return func(yield func(*agent.Event, error) bool) {
				ev := agent.NewEvent(ctx.InvocationID())
				ev.Message = agent.NewTextContent(reply, "assistant").ToMessage()
				yield(ev, nil)
			}
		},
	})
	require.NoError(t, err)
	return a
}

func TestNewBuildsAndRunsSwarm(t *testing.T) {
	reg := agentregistry.New()
	require.NoError(t, reg.Register(&agentregistry.Descriptor{
		Name: "greeter",
		Builder: func(ctx context.Context, cfg any) (agentregistry.Swarm, error) {
			return echoAgent(t, "hello there"), nil
		},
	}))

	exec, err := New(context.Background(), reg, "greeter", "", "")
	require.NoError(t, err)

	resp, err := exec.Chat(context.Background(), "hi", "task-1")
	require.NoError(t, err)
	require.Equal(t, "hello there", resp.Text)
}

func TestNewUnknownAgent(t *testing.T) {
	reg := agentregistry.New()
	_, err := New(context.Background(), reg, "missing", "", "")
	require.Error(t, err)
}

func TestNewRetriesWithSyntheticContext(t *testing.T) {
	reg := agentregistry.New()
	attempt := 0
	require.NoError(t, reg.Register(&agentregistry.Descriptor{
		Name: "finicky",
		Builder: func(ctx context.Context, cfg any) (agentregistry.Swarm, error) {
			attempt++
			if attempt == 1 {
				return nil, errors.New("needs a real context")
			}
			return echoAgent(t, "ok now"), nil
		},
	}))

	exec, err := New(context.Background(), reg, "finicky", "", "")
	require.NoError(t, err)
	require.Equal(t, 2, attempt)

	resp, err := exec.Chat(context.Background(), "hi", "")
	require.NoError(t, err)
	require.Equal(t, "ok now", resp.Text)
}

func TestChatInvokesPostInputParseHook(t *testing.T) {
	reg := agentregistry.New()
	require.NoError(t, reg.Register(&agentregistry.Descriptor{
		Name: "greeter2",
		Builder: func(ctx context.Context, cfg any) (agentregistry.Swarm, error) {
			return echoAgent(t, "hi"), nil
		},
	}))

	called := false
	hooks.Register("test-hook-probe", hooks.PreRunTask, func(state map[string]any) error {
		called = true
		return nil
	})

	exec, err := New(context.Background(), reg, "greeter2", "", "")
	require.NoError(t, err)
	exec.hookNames = append(exec.hookNames, "test-hook-probe")

	_, err = exec.Chat(context.Background(), "hi", "")
	require.NoError(t, err)
	require.True(t, called)
}
