// Package aworld provides a command-line orchestrator for a population of
// autonomous LLM agents drawn from heterogeneous sources, together with a
// concurrent batch-job runner that drives those agents against tabular
// inputs.
//
// # Quick Start
//
// Install the CLI:
//
//	go install github.com/aworld-dev/aworld/cmd/aworld@latest
//
// List the agents discovered from plugins, local directories, and remote
// backends:
//
//	aworld list --agent-dir ./agents
//
// Run a batch job against a CSV of prompts:
//
//	aworld batch-job job.yaml
//
// # Using as a Go library
//
//	import (
//	    "github.com/aworld-dev/aworld/pkg/agentregistry"
//	    "github.com/aworld-dev/aworld/pkg/agentloader"
//	    "github.com/aworld-dev/aworld/pkg/batch"
//	)
//
// # Architecture
//
// Agents may be defined by annotated code modules, by front-matter-plus-body
// Markdown documents, by installed plugins, or by remote HTTP backends. All
// four sources are merged by the multi-source loader (pkg/agentloader) with
// a deterministic precedence policy, then either chatted with interactively
// or driven at bulk through the batch executor (pkg/batch).
//
// # License
//
// AGPL-3.0 - See LICENSE.md for details.
package aworld
