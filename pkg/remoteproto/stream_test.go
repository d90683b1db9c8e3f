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
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sseBody() string {
	frames := []string{
		`{"metadata":{"type":"activity"},"data":"thinking"}`,
		`{"metadata":{"type":"message"},"response":"Hello, "}`,
		`{"metadata":{"type":"message"},"response":"world."}`,
	}
	out := ""
	for _, f := range frames {
		out += "data: " + f + "\n\n"
	}
	out += "data: [DONE]\n\n"
	return out
}

func TestChatStreamAccumulatesInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, sseBody())
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.ChatStream(context.Background(), ChatRequest{Model: "foo"}, RequestHeaders{}, nil)
	require.NoError(t, err)
	require.Equal(t, "thinking\nHello, world.", result.Text)
}

func TestChatStreamStopsOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `data: {"metadata":{"type":"message"},"response":"partial "}`+"\n\n")
		fmt.Fprint(w, `data: {"error":"boom"}`+"\n\n")
		fmt.Fprint(w, `data: {"metadata":{"type":"message"},"response":"never seen"}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.ChatStream(context.Background(), ChatRequest{Model: "foo"}, RequestHeaders{}, nil)
	require.Error(t, err)
	require.Equal(t, "partial ", result.Text)
}

func TestChatStreamOpenAIFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"chunk-a"}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"chunk-b"}}]}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.ChatStream(context.Background(), ChatRequest{Model: "foo"}, RequestHeaders{}, nil)
	require.NoError(t, err)
	require.Equal(t, "chunk-achunk-b", result.Text)
}

func TestListAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"Alpha"},{"name":"Beta"}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	agents, err := c.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	require.Equal(t, "Alpha", agents[0].Name)
}

func TestResolveAttachmentsTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("inline content"), 0644))

	resolved, parts := ResolveAttachments("see @" + path + " for details")
	require.Contains(t, resolved, "inline content")
	require.Empty(t, parts)
}

func TestResolveAttachmentsImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0644))

	resolved, parts := ResolveAttachments("look at @" + path)
	require.NotContains(t, resolved, "PNG")
	require.Len(t, parts, 1)
	require.Equal(t, "image_url", parts[0].Type)
}

func TestSessionHistoryRestore(t *testing.T) {
	h := NewSessionHistory()
	first := h.Current()
	second := h.New()
	require.NotEqual(t, first, second)

	restored := h.Restore()
	require.Equal(t, first, restored)
}
