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

// Package sourcecache translates a skill-or-plugin reference (a local path
// or a git URL) into a local, on-disk directory, cloning or updating it as
// needed.
package sourcecache

import "strings"

// gitRef is a parsed github.com reference: owner/repo on a branch, with an
// optional subdirectory carved out of a "tree/<branch>/..." URL segment.
type gitRef struct {
	Owner        string
	Repo         string
	Branch       string
	Subdirectory string
}

// parseGitRef recognizes "github.com" and "git@github.com:" references.
// It returns ok=false for anything else (treated as a local path by the
// caller).
func parseGitRef(ref string) (gitRef, bool) {
	rest, ok := stripGitHostPrefix(ref)
	if !ok {
		return gitRef{}, false
	}

	rest = strings.TrimSuffix(rest, ".git")
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segments) < 2 {
		return gitRef{}, false
	}

	r := gitRef{Owner: segments[0], Repo: segments[1], Branch: "main"}
	segments = segments[2:]

	// "tree/<branch>/<subdirectory...>"
	if len(segments) >= 1 && segments[0] == "tree" && len(segments) >= 2 {
		r.Branch = segments[1]
		if len(segments) > 2 {
			r.Subdirectory = strings.Join(segments[2:], "/")
		}
	}
	return r, true
}

func stripGitHostPrefix(ref string) (string, bool) {
	switch {
	case strings.HasPrefix(ref, "https://github.com/"):
		return strings.TrimPrefix(ref, "https://github.com/"), true
	case strings.HasPrefix(ref, "http://github.com/"):
		return strings.TrimPrefix(ref, "http://github.com/"), true
	case strings.HasPrefix(ref, "git@github.com:"):
		return strings.TrimPrefix(ref, "git@github.com:"), true
	default:
		return "", false
	}
}

// CloneURL returns the https clone URL for this reference.
func (r gitRef) CloneURL() string {
	return "https://github.com/" + r.Owner + "/" + r.Repo + ".git"
}
