// Package lexical models the editor's document tree.
// A note's content is a closed set of typed nodes under a single root node;
// the wire format is the editor's serialized JSON state, with a "type" string
// discriminating each node variant.
package lexical

// SchemaVersion is the recognized document schema version.
const SchemaVersion = 1

// Node type discriminators as they appear on the wire.
const (
	TypeRoot        = "root"
	TypeText        = "text"
	TypeParagraph   = "paragraph"
	TypeHeading     = "heading"
	TypeList        = "list"
	TypeListItem    = "listitem"
	TypeQuote       = "quote"
	TypeCode        = "code"
	TypeLink        = "link"
	TypeAutoLink    = "autolink"
	TypeHashtag     = "hashtag"
	TypeTable       = "table"
	TypeTableRow    = "tablerow"
	TypeTableCell   = "tablecell"
	TypePageBreak   = "page-break"
	TypeAIEmbedding = "ai-embedding"
	TypeVoiceInput  = "voice-input"
	TypeChatMessage = "chat-message"
	TypeChatSession = "chat-session"
	TypeMention     = "mention"
)

// TextDirection is the writing direction of a node.
type TextDirection string

const (
	DirectionLTR TextDirection = "ltr"
	DirectionRTL TextDirection = "rtl"
)

// MessageSender identifies who produced a chat message.
type MessageSender string

const (
	SenderUser   MessageSender = "user"
	SenderAgent  MessageSender = "agent"
	SenderSystem MessageSender = "system"
)

// Base holds the properties shared by every node variant.
// Optional fields stay absent on the wire when unset.
type Base struct {
	Version   int            `json:"version"`
	Direction *TextDirection `json:"direction,omitempty"`
	Format    *string        `json:"format,omitempty"`
	Indent    *int           `json:"indent,omitempty"`
}

// Node is one element of the document tree.
// The variant set is closed: decodeNode opens the union for deserialization
// and brief.ExtractText for projection. Adding a variant means extending
// both switches and the marshal method set.
type Node interface {
	NodeType() string
}

// Note is the top-level persisted unit: an optional row id, the editor's
// note identifier, and the serialized Lexical state.
type Note struct {
	ID           *int         `json:"id,omitempty"`
	NoteID       string       `json:"noteId,omitempty"`
	LexicalState LexicalState `json:"lexicalState"`
}

// LexicalState wraps the root node, mirroring the editor's serialization.
type LexicalState struct {
	Root RootNode `json:"root"`
}

// RootNode is the top-level container. Its type tag is always "root".
type RootNode struct {
	Base
	Type     string   `json:"type"`
	Children NodeList `json:"children"`
}

// TextNode is a run of plain text.
// Format flags: 1=bold, 2=italic, 4=underline, 8=strikethrough.
type TextNode struct {
	Base
	Text   string `json:"text"`
	Format int    `json:"format"`
}

// ParagraphNode is the basic block container.
type ParagraphNode struct {
	Base
	Children NodeList `json:"children"`
}

// HeadingNode is a document heading, tag h1 through h6.
type HeadingNode struct {
	Base
	Tag      string   `json:"tag"`
	Children NodeList `json:"children"`
}

// ListNode is an ordered or unordered list of list items.
type ListNode struct {
	Base
	ListType string   `json:"listType"`
	Start    *int     `json:"start,omitempty"`
	Children NodeList `json:"children"`
}

// List types.
const (
	ListBullet = "bullet"
	ListNumber = "number"
)

// ListItemNode is a single item inside a ListNode.
type ListItemNode struct {
	Base
	Children NodeList `json:"children"`
}

// QuoteNode is a blockquote.
type QuoteNode struct {
	Base
	Children NodeList `json:"children"`
}

// CodeNode is inline code or a code block. Text and Children are an
// exclusive union: inline code carries Text, block code carries Children.
type CodeNode struct {
	Base
	Text     *string  `json:"text,omitempty"`
	Language *string  `json:"language,omitempty"`
	Children NodeList `json:"children,omitempty"`
	Format   int      `json:"format"`
}

// LinkNode is an explicit hyperlink around child content.
type LinkNode struct {
	Base
	URL      string   `json:"url"`
	Rel      *string  `json:"rel,omitempty"`
	Target   *string  `json:"target,omitempty"`
	Children NodeList `json:"children"`
}

// AutoLinkNode is a link the editor detected automatically.
type AutoLinkNode struct {
	Base
	URL      string   `json:"url"`
	Children NodeList `json:"children"`
}

// HashtagNode is an inline #tag.
type HashtagNode struct {
	Base
	Text   string `json:"text"`
	Format int    `json:"format"`
}

// TableNode contains TableRow children.
type TableNode struct {
	Base
	Children NodeList `json:"children"`
}

// TableRowNode contains TableCell children.
type TableRowNode struct {
	Base
	Children NodeList `json:"children"`
}

// TableCellNode is a single table cell.
type TableCellNode struct {
	Base
	Children    NodeList `json:"children"`
	HeaderState int      `json:"headerState"`
	ColSpan     int      `json:"colSpan"`
	RowSpan     int      `json:"rowSpan"`
}

// PageBreakNode is a page separator. It carries only base properties.
type PageBreakNode struct {
	Base
}

// AIEmbeddingNode is a block of assistant-generated content.
type AIEmbeddingNode struct {
	Base
	Content   string `json:"content"`
	IsLoading bool   `json:"isLoading"`
}

// VoiceInputNode is a voice-to-text transcription.
type VoiceInputNode struct {
	Base
	Content string `json:"content"`
}

// ChatMessageNode is a single chat message embedded in the document.
type ChatMessageNode struct {
	Base
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	Timestamp string        `json:"timestamp"`
}

// ChatSessionNode is an embedded chat transcript. Its messages are
// lightweight records, not full document nodes.
type ChatSessionNode struct {
	Base
	SessionID string           `json:"sessionId"`
	IsActive  bool             `json:"isActive"`
	Messages  []SessionMessage `json:"messages"`
}

// SessionMessage is one message inside a ChatSessionNode.
type SessionMessage struct {
	ID        int           `json:"id"`
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	Timestamp string        `json:"timestamp"`
}

// MentionNode is an inline @mention.
type MentionNode struct {
	Base
	MentionName string `json:"mentionName"`
	Text        string `json:"text"`
	Format      int    `json:"format"`
}

func (*TextNode) NodeType() string        { return TypeText }
func (*ParagraphNode) NodeType() string   { return TypeParagraph }
func (*HeadingNode) NodeType() string     { return TypeHeading }
func (*ListNode) NodeType() string        { return TypeList }
func (*ListItemNode) NodeType() string    { return TypeListItem }
func (*QuoteNode) NodeType() string       { return TypeQuote }
func (*CodeNode) NodeType() string        { return TypeCode }
func (*LinkNode) NodeType() string        { return TypeLink }
func (*AutoLinkNode) NodeType() string    { return TypeAutoLink }
func (*HashtagNode) NodeType() string     { return TypeHashtag }
func (*TableNode) NodeType() string       { return TypeTable }
func (*TableRowNode) NodeType() string    { return TypeTableRow }
func (*TableCellNode) NodeType() string   { return TypeTableCell }
func (*PageBreakNode) NodeType() string   { return TypePageBreak }
func (*AIEmbeddingNode) NodeType() string { return TypeAIEmbedding }
func (*VoiceInputNode) NodeType() string  { return TypeVoiceInput }
func (*ChatMessageNode) NodeType() string { return TypeChatMessage }
func (*ChatSessionNode) NodeType() string { return TypeChatSession }
func (*MentionNode) NodeType() string     { return TypeMention }
