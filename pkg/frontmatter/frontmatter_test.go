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

package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatterNoFence(t *testing.T) {
	fm, start := ParseFrontMatter("Just a body, no fence.")
	assert.Empty(t, fm)
	assert.Equal(t, 0, start)
}

func TestParseFrontMatterScalarValues(t *testing.T) {
	doc := "---\nname: Foo\ndescription: demo\n---\nYou are Foo."
	fm, start := ParseFrontMatter(doc)
	assert.Equal(t, "Foo", fm["name"])
	assert.Equal(t, "demo", fm["description"])
	assert.Equal(t, "You are Foo.", Body(doc, start))
}

func TestParseFrontMatterInlineJSON(t *testing.T) {
	doc := "---\nmcp_config: {\"mcpServers\":{\"ms-playwright\":{\"command\":\"npx\"}}}\n---\nbody"
	fm, _ := ParseFrontMatter(doc)
	cfg, ok := fm["mcp_config"].(map[string]any)
	require.True(t, ok)
	servers, ok := cfg["mcpServers"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, servers, "ms-playwright")
}

// P8 Front-matter multi-line JSON: for a key: {...balanced JSON...}
// spanning K lines, the parser reports the parsed value and the body
// starts at line closing-fence+1.
func TestParseFrontMatterMultiLineJSON(t *testing.T) {
	doc := "---\n" +
		"mcp_config: {\n" +
		"  \"mcpServers\": {\n" +
		"    \"ms-playwright\": {\"command\": \"npx\"}\n" +
		"  }\n" +
		"}\n" +
		"name: Foo\n" +
		"---\n" +
		"body line 1\nbody line 2"

	fm, start := ParseFrontMatter(doc)
	cfg, ok := fm["mcp_config"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, cfg, "mcpServers")
	assert.Equal(t, "Foo", fm["name"])
	assert.Equal(t, "body line 1\nbody line 2", Body(doc, start))
}

func TestParseFrontMatterMalformedJSONFallsBackToRaw(t *testing.T) {
	doc := "---\nmcp_config: {not valid json\nname: Foo\n---\nbody"
	fm, _ := ParseFrontMatter(doc)
	// Recovery heuristic: "name: Foo" looks like a new key, so the
	// malformed block stops there and the raw text is stored.
	_, isString := fm["mcp_config"].(string)
	assert.True(t, isString)
	assert.Equal(t, "Foo", fm["name"])
}
