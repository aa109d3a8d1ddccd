// Package agent runs the note copilot: it assembles the system prompt from a
// document brief, drives the completion call, and decodes the reply into a
// typed action. The UI talks to it through a channel pair, one turn in
// flight at a time.
package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kittclouds/noteagent/pkg/brief"
	"github.com/kittclouds/noteagent/pkg/tags"
)

// systemPromptTemplate primes the model with the document brief and the
// action wire schema. Placeholders: brief JSON, cursor, insert_after hint.
const systemPromptTemplate = `You are a writing copilot embedded in a rich-text note editor.

The user's note is summarized below as a JSON array. Each entry has:
- "id": the position of the block among the note's top-level blocks
- "nodeType": the block's kind (paragraph, heading, list, ...)
- "content": the block's plain text

Note brief:
%s

The user's cursor is at top-level position %d.

You must answer with exactly one of:
1. Plain conversational text, when the user is only chatting.
2. A single JSON object, when the user asks you to edit the note:
   {"action":"insert_node","insert_after":<id>,"node_type":"<type>","content":"<text>"}
   {"action":"modify_node","id":<id>,"node_type":"<type>","content":"<text>"}
   {"action":"reply","content":"<text>"}

When inserting near the cursor, a good default is "insert_after": %d.
Do not wrap JSON in markdown code fences. Do not invent other action types.`

// BuildSystemPrompt renders the fixed instruction template. Pure string
// templating; deterministic for a given brief and cursor.
func BuildSystemPrompt(entries []brief.Entry, cursor int) string {
	briefJSON, _ := json.Marshal(entries)

	insertAfter := 0
	if cursor > 0 {
		insertAfter = cursor - 1
	}

	return fmt.Sprintf(systemPromptTemplate, briefJSON, cursor, insertAfter)
}

// relatedTagsBlock lists document tags that also occur in the user message,
// so the model can connect the request to the note's vocabulary. Empty when
// no dictionary is set or nothing matches.
func relatedTagsBlock(dict *tags.Dictionary, message string) string {
	if dict == nil {
		return ""
	}

	seen := make(map[string]bool)
	var labels []string
	for _, m := range dict.ScanWithInfo(message) {
		for _, info := range m.Tags {
			if !seen[info.Label] {
				seen[info.Label] = true
				labels = append(labels, info.Label)
			}
		}
	}
	if len(labels) == 0 {
		return ""
	}

	return "\n\nTags from this note mentioned by the user: " + strings.Join(labels, ", ")
}
