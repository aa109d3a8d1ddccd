// Package brief projects a document tree into the flat, plain-text summary
// used to prime the assistant. Each top-level child becomes at most one
// entry; nested structure is flattened into its extractable text.
package brief

import (
	"strings"

	"github.com/kittclouds/noteagent/pkg/lexical"
)

// Entry is one line of the brief. ID is the zero-based position of the node
// among the document's top-level children, not a position in the filtered
// output: entries whose text trims to empty are dropped, so IDs may be
// non-contiguous. The ID is the addressing scheme for edit actions.
type Entry struct {
	ID       int    `json:"id"`
	NodeType string `json:"nodeType"`
	Content  string `json:"content"`
}

// Project walks the root's children in order and returns the brief.
// Deterministic: same document, same output.
func Project(root *lexical.RootNode) []Entry {
	entries := make([]Entry, 0, len(root.Children))
	for i, child := range root.Children {
		content := ExtractText(child)
		if strings.TrimSpace(content) == "" {
			continue
		}
		entries = append(entries, Entry{
			ID:       i,
			NodeType: child.NodeType(),
			Content:  content,
		})
	}
	return entries
}

// ExtractText flattens a node into plain text, depth-first in document
// order. This is the single projection-side dispatch over the node union.
func ExtractText(n lexical.Node) string {
	switch v := n.(type) {
	case *lexical.TextNode:
		return v.Text
	case *lexical.HashtagNode:
		return v.Text
	case *lexical.MentionNode:
		return v.Text
	case *lexical.AIEmbeddingNode:
		return v.Content
	case *lexical.VoiceInputNode:
		return v.Content
	case *lexical.ParagraphNode:
		return extractChildren(v.Children)
	case *lexical.HeadingNode:
		return extractChildren(v.Children)
	case *lexical.QuoteNode:
		return extractChildren(v.Children)
	case *lexical.ListNode:
		return extractChildren(v.Children)
	case *lexical.ListItemNode:
		// Each list item is bulleted so list structure survives flattening.
		return "• " + extractChildren(v.Children)
	case *lexical.TableNode:
		return extractChildren(v.Children)
	case *lexical.TableRowNode:
		return extractChildren(v.Children)
	case *lexical.TableCellNode:
		return extractChildren(v.Children)
	case *lexical.LinkNode:
		return extractChildren(v.Children) + " (" + v.URL + ")"
	case *lexical.AutoLinkNode:
		return extractChildren(v.Children) + " (" + v.URL + ")"
	case *lexical.CodeNode:
		if v.Text != nil {
			return *v.Text
		}
		return extractChildren(v.Children)
	case *lexical.ChatMessageNode:
		return formatChatLine(string(v.Sender), v.Content)
	case *lexical.ChatSessionNode:
		lines := make([]string, 0, len(v.Messages))
		for _, m := range v.Messages {
			lines = append(lines, formatChatLine(string(m.Sender), m.Content))
		}
		return strings.Join(lines, "\n")
	case *lexical.PageBreakNode:
		return "---"
	}
	return ""
}

func extractChildren(children lexical.NodeList) string {
	var b strings.Builder
	for _, c := range children {
		b.WriteString(ExtractText(c))
	}
	return b.String()
}

func formatChatLine(sender, content string) string {
	return "[" + sender + "] " + content
}
