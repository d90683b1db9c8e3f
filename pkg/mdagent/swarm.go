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
	"fmt"
	"os"

	"github.com/aworld-dev/aworld/pkg/agentregistry"
	"github.com/aworld-dev/aworld/pkg/builder"
	"github.com/aworld-dev/aworld/pkg/tool"
)

// DetectProvider picks an LLM provider the same way the teacher's
// zero-config server mode does: the first provider whose API key
// environment variable is set wins, falling back to a local ollama
// instance when none are.
func DetectProvider() (provider, apiKeyEnv string) {
	switch {
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		return "anthropic", "ANTHROPIC_API_KEY"
	case os.Getenv("OPENAI_API_KEY") != "":
		return "openai", "OPENAI_API_KEY"
	case os.Getenv("GEMINI_API_KEY") != "":
		return "gemini", "GEMINI_API_KEY"
	default:
		return "ollama", ""
	}
}

// NewSwarmBuilder returns a SwarmBuilder that constructs a single LLM
// agent named name, with the given system prompt and toolsets, using a
// zero-config LLM resolved from the environment. It subsumes "try no-arg
// first": the returned closure ignores its context argument.
func NewSwarmBuilder(name, systemPrompt string, toolsets []tool.Toolset) agentregistry.SwarmBuilder {
	return func(_ context.Context, _ any) (agentregistry.Swarm, error) {
		provider, apiKeyEnv := DetectProvider()
		llmBuilder := builder.NewLLM(provider)
		if apiKeyEnv != "" {
			llmBuilder = llmBuilder.APIKeyFromEnv(apiKeyEnv)
		}
		llm, err := llmBuilder.Build()
		if err != nil {
			return nil, fmt.Errorf("mdagent: build LLM for %q: %w", name, err)
		}

		ab := builder.NewAgent(name).WithLLM(llm).WithInstruction(systemPrompt)
		for _, ts := range toolsets {
			ab = ab.WithToolset(ts)
		}
		return ab.Build()
	}
}
