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

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

const (
	versionCheckTimeout = 5 * time.Second
	checkoutTimeout     = 10 * time.Second
	fetchTimeout        = 60 * time.Second
	cloneTimeout        = 120 * time.Second
)

// Manager resolves skill-or-plugin references to local directories,
// cloning and updating git-backed ones into a per-user cache tree.
type Manager struct {
	CacheRoot string

	keyLocks sync.Map // map[string]*sync.Mutex, one per cache path
}

// New returns a Manager rooted at cacheRoot.
func New(cacheRoot string) *Manager {
	return &Manager{CacheRoot: cacheRoot}
}

// Resolve translates ref into a local directory. Local paths are returned
// unchanged (after existence is NOT checked here — callers do that).
// github.com references are cloned or updated under CacheRoot and the
// resulting path (including any subdirectory) is returned.
func (m *Manager) Resolve(ctx context.Context, ref string) (string, error) {
	parsed, ok := parseGitRef(ref)
	if !ok {
		return ref, nil
	}

	cachePath := filepath.Join(m.CacheRoot, parsed.Owner, parsed.Repo, parsed.Branch)

	lock := m.lockFor(cachePath)
	lock.Lock()
	defer lock.Unlock()

	if err := m.syncRepo(ctx, parsed, cachePath); err != nil {
		return "", err
	}

	if parsed.Subdirectory != "" {
		return filepath.Join(cachePath, parsed.Subdirectory), nil
	}
	return cachePath, nil
}

func (m *Manager) lockFor(key string) *sync.Mutex {
	v, _ := m.keyLocks.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// syncRepo clones cachePath if absent, else fetches and checks out the
// configured branch. Any git failure triggers exactly one reclone attempt.
func (m *Manager) syncRepo(ctx context.Context, ref gitRef, cachePath string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		return m.clone(ctx, ref, cachePath)
	}

	if err := m.update(ctx, ref, cachePath); err != nil {
		slog.Warn("sourcecache: update failed, reclone", "path", cachePath, "error", err)
		if rmErr := os.RemoveAll(cachePath); rmErr != nil {
			return fmt.Errorf("sourcecache: cleanup before reclone: %w", rmErr)
		}
		return m.clone(ctx, ref, cachePath)
	}
	return nil
}

func (m *Manager) clone(ctx context.Context, ref gitRef, cachePath string) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("sourcecache: mkdir cache parent: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "git", "clone", "--depth", "1", "--branch", ref.Branch, ref.CloneURL(), cachePath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(cachePath)
		return &GitError{Op: "clone", Output: string(out), Err: err}
	}
	return nil
}

func (m *Manager) update(ctx context.Context, ref gitRef, cachePath string) error {
	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	if out, err := m.run(fctx, cachePath, "fetch", "origin", ref.Branch); err != nil {
		return &GitError{Op: "fetch", Output: out, Err: err}
	}

	cctx, cancel2 := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel2()
	if out, err := m.run(cctx, cachePath, "checkout", ref.Branch); err != nil {
		return &GitError{Op: "checkout", Output: out, Err: err}
	}

	pctx, cancel3 := context.WithTimeout(ctx, fetchTimeout)
	defer cancel3()
	if out, err := m.run(pctx, cachePath, "pull", "origin", ref.Branch); err != nil {
		return &GitError{Op: "pull", Output: out, Err: err}
	}
	return nil
}

func (m *Manager) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
