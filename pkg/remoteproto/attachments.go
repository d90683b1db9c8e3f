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
	"encoding/base64"
	"os"
	"regexp"
	"strings"
)

var filenameRefPattern = regexp.MustCompile(`@(\S+)`)

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentPart is one OpenAI-style multimodal content part.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

// ResolveAttachments scans text for "@<path>" tokens. Each is resolved by
// reading the file: text files are appended inline to the returned text,
// image files are base64-encoded into a separate image_url content part.
// Unreadable references are left in the text untouched (best effort, not
// fatal — the remote side may still make sense of a literal "@path").
func ResolveAttachments(text string) (resolvedText string, parts []ContentPart) {
	matches := filenameRefPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		path := text[m[2]:m[3]]

		data, err := os.ReadFile(path)
		if err != nil {
			continue // leave the @path token as-is
		}

		b.WriteString(text[last:start])
		last = end

		if mime, isImage := imageMIME(path); isImage {
			encoded := base64.StdEncoding.EncodeToString(data)
			part := ContentPart{Type: "image_url"}
			part.ImageURL = &struct {
				URL string `json:"url"`
			}{URL: "data:" + mime + ";base64," + encoded}
			parts = append(parts, part)
		} else {
			b.WriteString(string(data))
		}
	}
	b.WriteString(text[last:])
	return b.String(), parts
}

func imageMIME(path string) (string, bool) {
	for ext, mime := range imageExtensions {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return mime, true
		}
	}
	return "", false
}

// BuildContent assembles the final OpenAI-compatible message content
// value: a bare string when there are no image parts, or a
// []ContentPart when multimodal attachments were resolved.
func BuildContent(text string) any {
	resolved, parts := ResolveAttachments(text)
	if len(parts) == 0 {
		return resolved
	}
	all := append([]ContentPart{{Type: "text", Text: resolved}}, parts...)
	return all
}
