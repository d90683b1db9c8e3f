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

package sourcecache

import "errors"

// ErrGitNotFound is returned when the git binary cannot be located on PATH.
var ErrGitNotFound = errors.New("sourcecache: git executable not found")

// GitError wraps a failed git invocation with its combined output.
type GitError struct {
	Op     string
	Output string
	Err    error
}

func (e *GitError) Error() string {
	return "sourcecache: " + e.Op + ": " + e.Err.Error() + ", output: " + e.Output
}

func (e *GitError) Unwrap() error { return e.Err }
