package agent

import (
	"fmt"

	"github.com/kittclouds/noteagent/pkg/brief"
	"github.com/kittclouds/noteagent/pkg/lexical"
	"github.com/kittclouds/noteagent/pkg/tags"
)

// BuildDictionary harvests the document's hashtags and mentions and
// compiles them into a scanning dictionary. Returns nil when the document
// carries no tags.
func BuildDictionary(root *lexical.RootNode) (*tags.Dictionary, error) {
	refs := brief.CollectTags(root)
	if len(refs) == 0 {
		return nil, nil
	}

	entries := make([]tags.Tag, 0, len(refs))
	for i, ref := range refs {
		kind := tags.KindHashtag
		if ref.Mention {
			kind = tags.KindMention
		}
		entries = append(entries, tags.Tag{
			ID:    fmt.Sprintf("tag-%d", i),
			Label: ref.Label,
			Kind:  kind,
		})
	}

	return tags.Compile(entries)
}
