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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// EventType is the metadata.type taxonomy a streamed event is classified
// into.
type EventType string

const (
	EventActivity       EventType = "activity"
	EventStep           EventType = "step"
	EventMessage        EventType = "message"
	EventToolCall       EventType = "tool_call"
	EventToolCallResult EventType = "tool_call_result"
	EventTaskResult     EventType = "task_result"
	EventFinishedSignal EventType = "finished_signal"
)

// Presenter receives user-visible notifications as a stream is
// processed. The "only one live status line at a time" invariant the
// teacher's terminal UI enforces is pushed into this interface per the
// port's live-display design note: callers that care about exclusivity
// implement ActivityBegin/Update/End with their own stack-depth check;
// batch callers pass NoopPresenter.
type Presenter interface {
	ActivityBegin(text string)
	ActivityUpdate(text string)
	ActivityEnd()
	Step(name, state string)
	Message(chunk string)
	ToolCall(name string)
	ToolCallResult(name, preview string)
	TaskResult(text string, isJSON bool)
	Finished()
}

// NoopPresenter discards every notification; used for disable_live_display
// (batch) mode where no terminal status line exists at all.
type NoopPresenter struct{}

func (NoopPresenter) ActivityBegin(string)       {}
func (NoopPresenter) ActivityUpdate(string)      {}
func (NoopPresenter) ActivityEnd()                {}
func (NoopPresenter) Step(string, string)         {}
func (NoopPresenter) Message(string)               {}
func (NoopPresenter) ToolCall(string)              {}
func (NoopPresenter) ToolCallResult(string, string) {}
func (NoopPresenter) TaskResult(string, bool)       {}
func (NoopPresenter) Finished()                    {}

// toolCallResultPreviewLimit caps the tool_call_result preview length.
const toolCallResultPreviewLimit = 200

// rawEvent is the wire shape of one streamed data: line. Fields are
// loosely typed since the remote protocol is "consumed as given" (no
// wire-format ownership lives in this core).
type rawEvent struct {
	Metadata struct {
		Type string `json:"type"`
	} `json:"metadata"`
	Data      json.RawMessage `json:"data"`
	Reasoning string          `json:"reasoning"`
	Response  string          `json:"response"`
	Error     string          `json:"error"`
	Usage     *Usage          `json:"usage"`

	// OpenAI-compatible fallback shape.
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Usage is the cost/token accounting a backend may attach to the final
// streamed frame (OpenAI's stream_options.include_usage convention), or
// to a non-streaming completion response. Any field absent from the wire
// payload is left at zero; callers apply their own metrics cascade on
// top (see pkg/batch's extraction order).
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost"`
}

// StreamResult is the outcome of one ChatStream call: the accumulated
// text plus whatever usage accounting the backend attached, if any.
type StreamResult struct {
	Text  string
	Usage *Usage
}

// ChatStream sends req to POST /chat/completions with stream=true and
// processes the resulting server-sent-event stream, notifying present
// as each event is classified and accumulating text per the type table:
// activity/step append "data"+newline; message appends reasoning then
// response verbatim; tool_call/tool_call_result/task_result append a
// string form of "data"; finished_signal changes nothing; an "error"
// field stops processing and returns the accumulator built so far
// alongside the error. If any event carried a "usage" object, the last
// one seen is returned in StreamResult.Usage.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, headers RequestHeaders, present Presenter) (StreamResult, error) {
	if present == nil {
		present = NoopPresenter{}
	}
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return StreamResult{}, fmt.Errorf("remoteproto: marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return StreamResult{}, fmt.Errorf("remoteproto: build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	headers.apply(httpReq)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return StreamResult{}, fmt.Errorf("remoteproto: chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StreamResult{}, fmt.Errorf("remoteproto: chat completion: %s", resp.Status)
	}

	var acc strings.Builder
	var usage *Usage
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var ev rawEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			// TransientStreamError: malformed frame, skip it, not fatal.
			continue
		}
		if ev.Usage != nil {
			usage = ev.Usage
		}

		if ev.Error != "" {
			return StreamResult{Text: acc.String(), Usage: usage}, fmt.Errorf("remoteproto: remote error: %s", ev.Error)
		}

		switch EventType(ev.Metadata.Type) {
		case EventActivity:
			text := rawString(ev.Data)
			acc.WriteString(text)
			acc.WriteString("\n")
			present.ActivityUpdate(text)
		case EventStep:
			text := rawString(ev.Data)
			acc.WriteString(text)
			acc.WriteString("\n")
			present.Step(text, "")
		case EventMessage:
			if ev.Reasoning != "" {
				acc.WriteString(ev.Reasoning)
			}
			acc.WriteString(ev.Response)
			present.Message(ev.Response)
		case EventToolCall:
			text := rawString(ev.Data)
			acc.WriteString(text)
			present.ToolCall(text)
		case EventToolCallResult:
			text := rawString(ev.Data)
			acc.WriteString(text)
			present.ToolCallResult(text, truncate(text, toolCallResultPreviewLimit))
		case EventTaskResult:
			text := rawString(ev.Data)
			acc.WriteString(text)
			present.TaskResult(text, json.Valid([]byte(text)))
		case EventFinishedSignal:
			present.Finished()
		default:
			// OpenAI-compatible fallback: streaming delta or non-streaming
			// message content, whichever is present.
			if len(ev.Choices) > 0 {
				if chunk := ev.Choices[0].Delta.Content; chunk != "" {
					acc.WriteString(chunk)
					present.Message(chunk)
				} else if msg := ev.Choices[0].Message.Content; msg != "" {
					acc.WriteString(msg)
					present.Message(msg)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return StreamResult{Text: acc.String(), Usage: usage}, fmt.Errorf("remoteproto: stream read: %w", err)
	}

	present.ActivityEnd()
	return StreamResult{Text: acc.String(), Usage: usage}, nil
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
