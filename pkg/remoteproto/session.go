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

package remoteproto

import (
	"sync"

	"github.com/google/uuid"
)

// SessionHistory tracks the small local "most recently used session id"
// history a remote executor needs for /restore and /latest — session
// state itself lives entirely on the backend; the client only ever
// passes an id.
type SessionHistory struct {
	mu      sync.Mutex
	current string
	recent  []string
}

// NewSessionHistory starts a fresh session id.
func NewSessionHistory() *SessionHistory {
	return &SessionHistory{current: uuid.New().String()}
}

// Current returns the active session id.
func (h *SessionHistory) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// New issues a fresh session id ("/new"), remembering the previous one.
func (h *SessionHistory) New() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != "" {
		h.recent = append(h.recent, h.current)
	}
	h.current = uuid.New().String()
	return h.current
}

// Restore re-adopts the most recently used session id ("/restore" or
// "/latest"). If there is no prior history, the current id is left
// unchanged.
func (h *SessionHistory) Restore() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.recent) == 0 {
		return h.current
	}
	h.current = h.recent[len(h.recent)-1]
	h.recent = h.recent[:len(h.recent)-1]
	return h.current
}

// Adopt sets the current session id explicitly (caller-supplied id at
// executor construction).
func (h *SessionHistory) Adopt(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != "" && h.current != id {
		h.recent = append(h.recent, h.current)
	}
	h.current = id
}
