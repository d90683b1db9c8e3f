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

// Package hooks is the process-wide named-callback registry a local
// executor consults at invocation time. It follows the same
// mutex-guarded map shape as pkg/codeagent's builder table: named
// contributions are registered once (typically from an init()) and
// looked up by name at run time, grouped by the lifecycle point they
// fire at.
package hooks

import "sync"

// Point identifies a lifecycle point a hook can fire at.
type Point string

const (
	PreInputParse    Point = "pre_input_parse"
	PostInputParse   Point = "post_input_parse"
	PreBuildContext  Point = "pre_build_context"
	PostBuildContext Point = "post_build_context"
	PreBuildTask     Point = "pre_build_task"
	PostBuildTask    Point = "post_build_task"
	PreRunTask       Point = "pre_run_task"
	PostRunTask      Point = "post_run_task"
	OnTaskError      Point = "on_task_error"
)

// Func is a named callback. State is whatever a hook needs to pass
// forward; invocation order and semantics are the caller's concern,
// this registry only does lookup-by-name-and-point.
type Func func(state map[string]any) error

type entry struct {
	point Point
	fn    Func
}

var (
	mu       sync.Mutex
	registry = map[string]entry{
		"FileParseHook": {point: PostInputParse, fn: fileParseHook},
	}
)

// Register contributes a named hook at the given lifecycle point,
// overwriting any earlier registration under the same name.
func Register(name string, point Point, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = entry{point: point, fn: fn}
}

// Resolve looks up each name in names and returns the hooks bound at
// point, in the order names was given. Unknown names are skipped.
func Resolve(point Point, names []string) []Func {
	mu.Lock()
	defer mu.Unlock()

	var out []Func
	for _, name := range names {
		e, ok := registry[name]
		if !ok || e.point != point {
			continue
		}
		out = append(out, e.fn)
	}
	return out
}

// ResolveAll returns every hook registered at point, keyed by name,
// regardless of what a particular descriptor asked for — used to apply
// always-on hooks like FileParseHook.
func ResolveAll(point Point) []Func {
	mu.Lock()
	defer mu.Unlock()

	var out []Func
	for _, e := range registry {
		if e.point == point {
			out = append(out, e.fn)
		}
	}
	return out
}

// fileParseHook is the one hook this runtime always installs at
// post_input_parse: it is a no-op placeholder for the retained runtime's
// own MCP document-parsing tool (pkg/tool's document parser), since
// actual file-to-text conversion happens inside the swarm itself once a
// prompt reaches it — this hook's job is only to ensure the hook point
// always has at least one registered contributor, matching the "always
// present" invariant.
func fileParseHook(state map[string]any) error {
	return nil
}
