package brief

import "github.com/kittclouds/noteagent/pkg/lexical"

// TagRef is a hashtag or mention occurrence found in a document.
type TagRef struct {
	Label   string
	Mention bool // true for @mentions, false for #hashtags
}

// CollectTags walks the whole tree depth-first and returns each distinct
// hashtag and mention in first-seen order. The labels keep their sigils.
func CollectTags(root *lexical.RootNode) []TagRef {
	seen := make(map[string]bool)
	var out []TagRef

	var walk func(n lexical.Node)
	walk = func(n lexical.Node) {
		switch v := n.(type) {
		case *lexical.HashtagNode:
			if !seen[v.Text] {
				seen[v.Text] = true
				out = append(out, TagRef{Label: v.Text})
			}
		case *lexical.MentionNode:
			if !seen[v.Text] {
				seen[v.Text] = true
				out = append(out, TagRef{Label: v.Text, Mention: true})
			}
		default:
			for _, c := range childrenOf(n) {
				walk(c)
			}
		}
	}

	for _, c := range root.Children {
		walk(c)
	}
	return out
}

// childrenOf returns a container's child list, nil for leaves.
func childrenOf(n lexical.Node) lexical.NodeList {
	switch v := n.(type) {
	case *lexical.ParagraphNode:
		return v.Children
	case *lexical.HeadingNode:
		return v.Children
	case *lexical.ListNode:
		return v.Children
	case *lexical.ListItemNode:
		return v.Children
	case *lexical.QuoteNode:
		return v.Children
	case *lexical.CodeNode:
		return v.Children
	case *lexical.LinkNode:
		return v.Children
	case *lexical.AutoLinkNode:
		return v.Children
	case *lexical.TableNode:
		return v.Children
	case *lexical.TableRowNode:
		return v.Children
	case *lexical.TableCellNode:
		return v.Children
	}
	return nil
}
