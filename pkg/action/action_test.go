package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainProse(t *testing.T) {
	act, err := Parse("Hello there")
	require.NoError(t, err)
	assert.Equal(t, Reply{Content: "Hello there"}, act)
}

func TestParseFencedAndPaddedReply(t *testing.T) {
	act, err := Parse(" ```{\"action\":\"reply\",\"content\":\"hi\"}``` ")
	require.NoError(t, err)
	assert.Equal(t, Reply{Content: "hi"}, act)
}

func TestParseFenceWithLanguageTag(t *testing.T) {
	raw := "```json\n{\"action\":\"insert_node\",\"insert_after\":0,\"node_type\":\"paragraph\",\"content\":\"x\"}\n```"
	act, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, InsertNode{InsertAfter: 0, NodeType: "paragraph", Content: "x"}, act)
}

func TestParseInsertNode(t *testing.T) {
	act, err := Parse(`{"action":"insert_node","insert_after":2,"node_type":"text","content":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, InsertNode{InsertAfter: 2, NodeType: "text", Content: "x"}, act)
}

func TestParseModifyNode(t *testing.T) {
	act, err := Parse(`{"action":"modify_node","id":4,"node_type":"paragraph","content":"rewritten"}`)
	require.NoError(t, err)
	assert.Equal(t, ModifyNode{ID: 4, NodeType: "paragraph", Content: "rewritten"}, act)
}

func TestParseActionlessJSONIsProse(t *testing.T) {
	act, err := Parse(`{"foo":"bar"}`)
	require.NoError(t, err)
	assert.Equal(t, Reply{Content: `{"foo":"bar"}`}, act)
}

func TestParseUnsupportedActionType(t *testing.T) {
	_, err := Parse(`{"action":"delete_node"}`)
	require.Error(t, err)

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "delete_node", unsupported.ActionType)
}

func TestParseNonStringActionValue(t *testing.T) {
	_, err := Parse(`{"action":7}`)
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "7", unsupported.ActionType)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse("{not json")
	require.ErrorIs(t, err, ErrMalformedJSON)
}

func TestParseProseStartingWithBraceErrors(t *testing.T) {
	// Accepted behavior: the '{' prefix heuristic wins, so brace-leading
	// prose is a parse error rather than a reply.
	_, err := Parse("{something the model said} and more prose")
	require.ErrorIs(t, err, ErrMalformedJSON)
}

func TestParseMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"InsertMissingAfter", `{"action":"insert_node","node_type":"text","content":"x"}`},
		{"InsertMissingNodeType", `{"action":"insert_node","insert_after":1,"content":"x"}`},
		{"InsertMissingContent", `{"action":"insert_node","insert_after":1,"node_type":"text"}`},
		{"ModifyMissingID", `{"action":"modify_node","node_type":"text","content":"x"}`},
		{"ReplyMissingContent", `{"action":"reply"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			require.ErrorIs(t, err, ErrMalformedShape)
		})
	}
}

func TestParseMistypedFields(t *testing.T) {
	_, err := Parse(`{"action":"insert_node","insert_after":"two","node_type":"text","content":"x"}`)
	require.ErrorIs(t, err, ErrMalformedShape)

	_, err = Parse(`{"action":"modify_node","id":1,"node_type":"text","content":5}`)
	require.ErrorIs(t, err, ErrMalformedShape)
}

func TestParseJSONReplyAction(t *testing.T) {
	act, err := Parse(`{"action":"reply","content":"structured reply"}`)
	require.NoError(t, err)
	assert.Equal(t, Reply{Content: "structured reply"}, act)
}

func TestParseWhitespaceOnlyInput(t *testing.T) {
	act, err := Parse("   \n\t ")
	require.NoError(t, err)
	assert.Equal(t, Reply{Content: ""}, act)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "reply", Reply{}.Kind())
	assert.Equal(t, "insert_node", InsertNode{}.Kind())
	assert.Equal(t, "modify_node", ModifyNode{}.Kind())
}
