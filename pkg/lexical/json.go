package lexical

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// UnrecognizedNodeTypeError reports an unknown "type" discriminator at a
// specific position in the tree. Decoding the whole document fails; there is
// no partial recovery of sibling nodes.
type UnrecognizedNodeTypeError struct {
	Path     string // e.g. "root.children[3].children[0]"
	TypeName string
}

func (e *UnrecognizedNodeTypeError) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf("lexical: node at %s is missing the type discriminator", e.pathOrRoot())
	}
	return fmt.Sprintf("lexical: unrecognized node type %q at %s", e.TypeName, e.pathOrRoot())
}

func (e *UnrecognizedNodeTypeError) pathOrRoot() string {
	if e.Path == "" {
		return "document root"
	}
	return e.Path
}

// ParseNote decodes a serialized note (the `{noteId, lexicalState}` wire
// object). Unknown top-level fields are ignored for forward compatibility;
// an unknown node type anywhere in the tree fails the whole decode, and so
// does an absent lexicalState.root, which would otherwise slip past the
// envelope validation as a zero value.
func ParseNote(data []byte) (*Note, error) {
	var note Note
	if err := json.Unmarshal(data, &note); err != nil {
		return nil, fmt.Errorf("lexical: decode note: %w", err)
	}
	if note.LexicalState.Root.Type != TypeRoot {
		return nil, errors.New("lexical: note is missing lexicalState.root")
	}
	return &note, nil
}

// ParseState decodes a bare `{root: ...}` Lexical state payload.
func ParseState(data []byte) (*LexicalState, error) {
	var state LexicalState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("lexical: decode state: %w", err)
	}
	if state.Root.Type != TypeRoot {
		return nil, errors.New("lexical: state is missing root")
	}
	return &state, nil
}

// UnmarshalJSON validates the root envelope: the tag must be "root" and the
// schema version must be recognized.
func (r *RootNode) UnmarshalJSON(data []byte) error {
	type alias RootNode
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return prefixPath(err, "root")
	}
	if a.Type != TypeRoot {
		return fmt.Errorf("lexical: root node has type %q, want %q", a.Type, TypeRoot)
	}
	if a.Version != SchemaVersion {
		return fmt.Errorf("lexical: unsupported schema version %d", a.Version)
	}
	*r = RootNode(a)
	return nil
}

// NodeList is an ordered child sequence. It owns the polymorphic JSON
// handling for the node union.
type NodeList []Node

// UnmarshalJSON decodes each element through the type-tag dispatch,
// annotating errors with the child index.
func (l *NodeList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(NodeList, 0, len(raws))
	for i, raw := range raws {
		n, err := decodeNode(raw)
		if err != nil {
			return prefixPath(err, "children["+strconv.Itoa(i)+"]")
		}
		out = append(out, n)
	}
	*l = out
	return nil
}

// MarshalJSON renders a nil list as an empty array so container nodes
// always serialize a children field.
func (l NodeList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Node(l))
}

// decodeNode is the single point where the node union is opened up for
// deserialization. Every variant must appear in this switch.
func decodeNode(data json.RawMessage) (Node, error) {
	var env struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == nil {
		return nil, &UnrecognizedNodeTypeError{}
	}

	var n Node
	switch *env.Type {
	case TypeText:
		n = &TextNode{}
	case TypeParagraph:
		n = &ParagraphNode{}
	case TypeHeading:
		n = &HeadingNode{}
	case TypeList:
		n = &ListNode{}
	case TypeListItem:
		n = &ListItemNode{}
	case TypeQuote:
		n = &QuoteNode{}
	case TypeCode:
		n = &CodeNode{}
	case TypeLink:
		n = &LinkNode{}
	case TypeAutoLink:
		n = &AutoLinkNode{}
	case TypeHashtag:
		n = &HashtagNode{}
	case TypeTable:
		n = &TableNode{}
	case TypeTableRow:
		n = &TableRowNode{}
	case TypeTableCell:
		n = &TableCellNode{}
	case TypePageBreak:
		n = &PageBreakNode{}
	case TypeAIEmbedding:
		n = &AIEmbeddingNode{}
	case TypeVoiceInput:
		n = &VoiceInputNode{}
	case TypeChatMessage:
		n = &ChatMessageNode{}
	case TypeChatSession:
		n = &ChatSessionNode{}
	case TypeMention:
		n = &MentionNode{}
	default:
		return nil, &UnrecognizedNodeTypeError{TypeName: *env.Type}
	}

	if err := json.Unmarshal(data, n); err != nil {
		return nil, err
	}
	if err := validateNode(n); err != nil {
		return nil, err
	}
	return n, nil
}

// validateNode enforces per-variant field constraints after decoding.
func validateNode(n Node) error {
	switch v := n.(type) {
	case *HeadingNode:
		switch v.Tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
		default:
			return fmt.Errorf("lexical: invalid heading tag %q", v.Tag)
		}
	case *ListNode:
		if v.ListType != ListBullet && v.ListType != ListNumber {
			return fmt.Errorf("lexical: invalid list type %q", v.ListType)
		}
	case *CodeNode:
		if v.Text != nil && len(v.Children) > 0 {
			return errors.New("lexical: code node populates both text and children")
		}
	case *ChatMessageNode:
		if err := validateSender(v.Sender); err != nil {
			return err
		}
	case *ChatSessionNode:
		for _, m := range v.Messages {
			if err := validateSender(m.Sender); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateSender(s MessageSender) error {
	switch s {
	case SenderUser, SenderAgent, SenderSystem:
		return nil
	}
	return fmt.Errorf("lexical: invalid message sender %q", s)
}

// prefixPath prepends a tree position onto a decode error. Unrecognized-type
// errors accumulate a full path as the failure unwinds; other errors get a
// plain textual prefix.
func prefixPath(err error, prefix string) error {
	var unrec *UnrecognizedNodeTypeError
	if errors.As(err, &unrec) {
		if unrec.Path == "" {
			unrec.Path = prefix
		} else {
			unrec.Path = prefix + "." + unrec.Path
		}
		return err
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// marshalTagged splices the "type" discriminator ahead of a variant's own
// fields. Callers pass an alias type so the variant's MarshalJSON is not
// re-entered.
func marshalTagged(tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head := []byte(`{"type":` + strconv.Quote(tag))
	if len(body) > 2 {
		head = append(head, ',')
		return append(head, body[1:]...), nil
	}
	return append(head, '}'), nil
}

func (n *TextNode) MarshalJSON() ([]byte, error) {
	type alias TextNode
	return marshalTagged(TypeText, (*alias)(n))
}

func (n *ParagraphNode) MarshalJSON() ([]byte, error) {
	type alias ParagraphNode
	return marshalTagged(TypeParagraph, (*alias)(n))
}

func (n *HeadingNode) MarshalJSON() ([]byte, error) {
	type alias HeadingNode
	return marshalTagged(TypeHeading, (*alias)(n))
}

func (n *ListNode) MarshalJSON() ([]byte, error) {
	type alias ListNode
	return marshalTagged(TypeList, (*alias)(n))
}

func (n *ListItemNode) MarshalJSON() ([]byte, error) {
	type alias ListItemNode
	return marshalTagged(TypeListItem, (*alias)(n))
}

func (n *QuoteNode) MarshalJSON() ([]byte, error) {
	type alias QuoteNode
	return marshalTagged(TypeQuote, (*alias)(n))
}

func (n *CodeNode) MarshalJSON() ([]byte, error) {
	type alias CodeNode
	return marshalTagged(TypeCode, (*alias)(n))
}

func (n *LinkNode) MarshalJSON() ([]byte, error) {
	type alias LinkNode
	return marshalTagged(TypeLink, (*alias)(n))
}

func (n *AutoLinkNode) MarshalJSON() ([]byte, error) {
	type alias AutoLinkNode
	return marshalTagged(TypeAutoLink, (*alias)(n))
}

func (n *HashtagNode) MarshalJSON() ([]byte, error) {
	type alias HashtagNode
	return marshalTagged(TypeHashtag, (*alias)(n))
}

func (n *TableNode) MarshalJSON() ([]byte, error) {
	type alias TableNode
	return marshalTagged(TypeTable, (*alias)(n))
}

func (n *TableRowNode) MarshalJSON() ([]byte, error) {
	type alias TableRowNode
	return marshalTagged(TypeTableRow, (*alias)(n))
}

func (n *TableCellNode) MarshalJSON() ([]byte, error) {
	type alias TableCellNode
	return marshalTagged(TypeTableCell, (*alias)(n))
}

func (n *PageBreakNode) MarshalJSON() ([]byte, error) {
	type alias PageBreakNode
	return marshalTagged(TypePageBreak, (*alias)(n))
}

func (n *AIEmbeddingNode) MarshalJSON() ([]byte, error) {
	type alias AIEmbeddingNode
	return marshalTagged(TypeAIEmbedding, (*alias)(n))
}

func (n *VoiceInputNode) MarshalJSON() ([]byte, error) {
	type alias VoiceInputNode
	return marshalTagged(TypeVoiceInput, (*alias)(n))
}

func (n *ChatMessageNode) MarshalJSON() ([]byte, error) {
	type alias ChatMessageNode
	return marshalTagged(TypeChatMessage, (*alias)(n))
}

func (n *ChatSessionNode) MarshalJSON() ([]byte, error) {
	type alias ChatSessionNode
	return marshalTagged(TypeChatSession, (*alias)(n))
}

func (n *MentionNode) MarshalJSON() ([]byte, error) {
	type alias MentionNode
	return marshalTagged(TypeMention, (*alias)(n))
}
