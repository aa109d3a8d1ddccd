package brief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/noteagent/pkg/lexical"
)

func text(s string) *lexical.TextNode {
	return &lexical.TextNode{Base: lexical.Base{Version: 1}, Text: s}
}

func paragraph(children ...lexical.Node) *lexical.ParagraphNode {
	return &lexical.ParagraphNode{Base: lexical.Base{Version: 1}, Children: children}
}

func root(children ...lexical.Node) *lexical.RootNode {
	return &lexical.RootNode{
		Base:     lexical.Base{Version: 1},
		Type:     lexical.TypeRoot,
		Children: children,
	}
}

func TestProjectDropsEmptyAndKeepsOriginalIndex(t *testing.T) {
	// [Text(""), Paragraph("hi"), PageBreak] -> ids 1 and 2, id 0 dropped.
	doc := root(
		text(""),
		paragraph(text("hi")),
		&lexical.PageBreakNode{Base: lexical.Base{Version: 1}},
	)

	entries := Project(doc)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: 1, NodeType: "paragraph", Content: "hi"}, entries[0])
	assert.Equal(t, Entry{ID: 2, NodeType: "page-break", Content: "---"}, entries[1])
}

func TestProjectWhitespaceOnlyDropped(t *testing.T) {
	doc := root(
		paragraph(text("  \n\t ")),
		text("   "),
		paragraph(text("kept")),
	)

	entries := Project(doc)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].ID)
	assert.Equal(t, "kept", entries[0].Content)
}

func TestProjectIDsStrictlyIncreasing(t *testing.T) {
	doc := root(
		paragraph(text("a")),
		text(""),
		paragraph(text("b")),
		text(" "),
		paragraph(text("c")),
	)

	entries := Project(doc)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].ID, entries[i-1].ID)
	}
	for _, e := range entries {
		assert.GreaterOrEqual(t, e.ID, 0)
		assert.Less(t, e.ID, len(doc.Children))
	}
}

func TestProjectDeterministic(t *testing.T) {
	doc := root(paragraph(text("same")), &lexical.PageBreakNode{Base: lexical.Base{Version: 1}})
	first := Project(doc)
	second := Project(doc)
	assert.Equal(t, first, second)
}

func TestExtractTextNestedContainers(t *testing.T) {
	// Quote > Paragraph > (Text, Mention) flattens pre-order with no separators.
	doc := root(&lexical.QuoteNode{
		Base: lexical.Base{Version: 1},
		Children: lexical.NodeList{
			paragraph(
				text("said by "),
				&lexical.MentionNode{Base: lexical.Base{Version: 1}, MentionName: "bob", Text: "@bob"},
			),
		},
	})

	entries := Project(doc)
	require.Len(t, entries, 1)
	assert.Equal(t, "said by @bob", entries[0].Content)
}

func TestExtractTextListBullets(t *testing.T) {
	list := &lexical.ListNode{
		Base:     lexical.Base{Version: 1},
		ListType: lexical.ListBullet,
		Children: lexical.NodeList{
			&lexical.ListItemNode{Base: lexical.Base{Version: 1}, Children: lexical.NodeList{text("first")}},
			&lexical.ListItemNode{Base: lexical.Base{Version: 1}, Children: lexical.NodeList{text("second")}},
		},
	}

	assert.Equal(t, "• first• second", ExtractText(list))
}

func TestExtractTextLinks(t *testing.T) {
	link := &lexical.LinkNode{
		Base:     lexical.Base{Version: 1},
		URL:      "https://example.com",
		Children: lexical.NodeList{text("docs")},
	}
	assert.Equal(t, "docs (https://example.com)", ExtractText(link))

	auto := &lexical.AutoLinkNode{
		Base:     lexical.Base{Version: 1},
		URL:      "https://auto.example.com",
		Children: lexical.NodeList{text("https://auto.example.com")},
	}
	assert.Equal(t, "https://auto.example.com (https://auto.example.com)", ExtractText(auto))
}

func TestExtractTextChatNodes(t *testing.T) {
	msg := &lexical.ChatMessageNode{
		Base:    lexical.Base{Version: 1},
		Sender:  lexical.SenderUser,
		Content: "hello",
	}
	assert.Equal(t, "[user] hello", ExtractText(msg))

	session := &lexical.ChatSessionNode{
		Base:      lexical.Base{Version: 1},
		SessionID: "s-1",
		Messages: []lexical.SessionMessage{
			{ID: 1, Sender: lexical.SenderUser, Content: "hi"},
			{ID: 2, Sender: lexical.SenderAgent, Content: "hello back"},
		},
	}
	assert.Equal(t, "[user] hi\n[agent] hello back", ExtractText(session))
}

func TestExtractTextCodeVariants(t *testing.T) {
	inline := "x := 1"
	code := &lexical.CodeNode{Base: lexical.Base{Version: 1}, Text: &inline}
	assert.Equal(t, "x := 1", ExtractText(code))

	block := &lexical.CodeNode{
		Base:     lexical.Base{Version: 1},
		Children: lexical.NodeList{text("y := 2")},
	}
	assert.Equal(t, "y := 2", ExtractText(block))

	empty := &lexical.CodeNode{Base: lexical.Base{Version: 1}}
	assert.Equal(t, "", ExtractText(empty))
}

func TestExtractTextTable(t *testing.T) {
	table := &lexical.TableNode{
		Base: lexical.Base{Version: 1},
		Children: lexical.NodeList{
			&lexical.TableRowNode{Base: lexical.Base{Version: 1}, Children: lexical.NodeList{
				&lexical.TableCellNode{Base: lexical.Base{Version: 1}, Children: lexical.NodeList{text("a")}},
				&lexical.TableCellNode{Base: lexical.Base{Version: 1}, Children: lexical.NodeList{text("b")}},
			}},
		},
	}
	assert.Equal(t, "ab", ExtractText(table))
}

func TestExtractTextLeafNodes(t *testing.T) {
	assert.Equal(t, "#go", ExtractText(&lexical.HashtagNode{Base: lexical.Base{Version: 1}, Text: "#go"}))
	assert.Equal(t, "transcribed", ExtractText(&lexical.VoiceInputNode{Base: lexical.Base{Version: 1}, Content: "transcribed"}))
	assert.Equal(t, "generated", ExtractText(&lexical.AIEmbeddingNode{Base: lexical.Base{Version: 1}, Content: "generated"}))
}
