// Package action decodes the assistant's raw reply into a typed edit action.
// Replies arrive as free-form text: plain prose, JSON, or JSON wrapped in
// markdown code fences. The parser is total over its input and never panics.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Wire values for the "action" field.
const (
	KindReply      = "reply"
	KindInsertNode = "insert_node"
	KindModifyNode = "modify_node"
)

// Action is the closed union of instructions the assistant can issue.
type Action interface {
	Kind() string
}

// Reply is a free-text answer with no document edit.
type Reply struct {
	Content string `json:"content"`
}

// InsertNode inserts new content after the top-level child at InsertAfter.
type InsertNode struct {
	InsertAfter int    `json:"insert_after"`
	NodeType    string `json:"node_type"`
	Content     string `json:"content"`
}

// ModifyNode replaces the content of the top-level child at ID.
type ModifyNode struct {
	ID       int    `json:"id"`
	NodeType string `json:"node_type"`
	Content  string `json:"content"`
}

func (Reply) Kind() string      { return KindReply }
func (InsertNode) Kind() string { return KindInsertNode }
func (ModifyNode) Kind() string { return KindModifyNode }

// Sentinel errors for reply decoding. Callers surface these back into the
// conversation as correction requests; nothing is retried here.
var (
	// ErrMalformedJSON: the reply looked like JSON (leading '{') but did
	// not parse. Prose that merely starts with '{' hits this on purpose.
	ErrMalformedJSON = errors.New("action: reply is not valid json")

	// ErrMalformedShape: the JSON parsed and named a known action, but a
	// required field is missing or mistyped.
	ErrMalformedShape = errors.New("action: missing or mistyped action fields")
)

// UnsupportedTypeError reports an explicit "action" value outside the known
// set. Unlike an absent action field (treated as prose), an explicit unknown
// action is surfaced so the model turn can be corrected.
type UnsupportedTypeError struct {
	ActionType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("action: unsupported action type %q", e.ActionType)
}

// Parse converts a raw model reply into exactly one Action.
func Parse(raw string) (Action, error) {
	s := stripFences(strings.TrimSpace(raw))

	// The '{' prefix is the sole signal separating structured output from
	// prose. Anything else is a verbatim reply.
	if !strings.HasPrefix(s, "{") {
		return Reply{Content: s}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	rawKind, ok := fields["action"]
	if !ok {
		// Actionless JSON is prose, not a structural error.
		return Reply{Content: s}, nil
	}

	var kind string
	if err := json.Unmarshal(rawKind, &kind); err != nil {
		return nil, &UnsupportedTypeError{ActionType: string(rawKind)}
	}

	switch kind {
	case KindReply:
		return decodeReply(s)
	case KindInsertNode:
		return decodeInsertNode(s)
	case KindModifyNode:
		return decodeModifyNode(s)
	default:
		return nil, &UnsupportedTypeError{ActionType: kind}
	}
}

func decodeReply(s string) (Action, error) {
	var body struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(s), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
	}
	if body.Content == nil {
		return nil, fmt.Errorf("%w: reply requires content", ErrMalformedShape)
	}
	return Reply{Content: *body.Content}, nil
}

func decodeInsertNode(s string) (Action, error) {
	var body struct {
		InsertAfter *int    `json:"insert_after"`
		NodeType    *string `json:"node_type"`
		Content     *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(s), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
	}
	if body.InsertAfter == nil || body.NodeType == nil || body.Content == nil {
		return nil, fmt.Errorf("%w: insert_node requires insert_after, node_type and content", ErrMalformedShape)
	}
	return InsertNode{
		InsertAfter: *body.InsertAfter,
		NodeType:    *body.NodeType,
		Content:     *body.Content,
	}, nil
}

func decodeModifyNode(s string) (Action, error) {
	var body struct {
		ID       *int    `json:"id"`
		NodeType *string `json:"node_type"`
		Content  *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(s), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
	}
	if body.ID == nil || body.NodeType == nil || body.Content == nil {
		return nil, fmt.Errorf("%w: modify_node requires id, node_type and content", ErrMalformedShape)
	}
	return ModifyNode{
		ID:       *body.ID,
		NodeType: *body.NodeType,
		Content:  *body.Content,
	}, nil
}

// stripFences removes one leading and/or trailing ``` marker. The opening
// fence may carry a language tag on its own line.
func stripFences(s string) string {
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && isLanguageTag(strings.TrimSpace(s[:nl])) {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// isLanguageTag matches the charset markdown allows in fence info strings,
// e.g. "json" or "go". Empty is a bare fence.
func isLanguageTag(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '+' || c == '-':
		default:
			return false
		}
	}
	return true
}
