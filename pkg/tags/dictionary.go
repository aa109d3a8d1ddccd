// Package tags provides a runtime dictionary over a note's hashtags and
// mentions, using Aho-Corasick so one automaton serves both exact lookup
// AND free-text scanning.
package tags

import (
	"strings"
	"unicode"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Kind classifies a tag.
type Kind int

const (
	KindHashtag Kind = iota
	KindMention
)

func (k Kind) String() string {
	if k == KindMention {
		return "MENTION"
	}
	return "HASHTAG"
}

// Normalize cleans and lowercases text for matching: sigils and punctuation
// become spaces, runs of whitespace collapse.
func Normalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		c := unicode.ToLower(ch)

		// Curly apostrophe -> straight
		if c == '’' {
			out.WriteRune('\'')
			continue
		}

		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'' {
			out.WriteRune(c)
		} else {
			out.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(out.String()), " ")
}

// stopWords filtered during alias generation.
var stopWords = map[string]bool{
	"the": true, "of": true, "and": true, "a": true, "an": true,
	"to": true, "in": true, "on": true, "for": true, "at": true, "by": true,
	"is": true, "it": true, "as": true, "be": true, "was": true,
	"are": true, "with": true, "from": true, "into": true,
	"that": true, "this": true, "has": true, "have": true, "had": true,
}

// tokenize splits and normalizes, filtering stop words.
func tokenize(text string) []string {
	words := strings.Fields(Normalize(text))
	result := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) > 0 && !stopWords[w] {
			result = append(result, w)
		}
	}
	return result
}

// TagInfo holds resolved tag metadata.
type TagInfo struct {
	ID    string
	Label string
	Kind  Kind
}

// Tag is input for dictionary compilation. Label keeps its sigil
// ("#travel", "@alice"); matching is done on the normalized form.
type Tag struct {
	ID      string
	Label   string
	Kind    Kind
	Aliases []string
}

// Dictionary maps tag surface forms to tag metadata and scans free text
// for occurrences in O(n).
type Dictionary struct {
	ac ahocorasick.AhoCorasick

	// Pattern index -> tag IDs (multiple tags may share a surface form)
	patternToIDs [][]string

	// Normalized pattern -> pattern index
	patternIndex map[string]int

	// Tag ID -> TagInfo
	idToInfo map[string]*TagInfo

	// All patterns in order (for the AC builder)
	patterns []string
}

// Compile builds a Dictionary from tags.
func Compile(entries []Tag) (*Dictionary, error) {
	dict := &Dictionary{
		patternToIDs: [][]string{},
		patternIndex: make(map[string]int),
		idToInfo:     make(map[string]*TagInfo),
		patterns:     []string{},
	}

	for _, e := range entries {
		dict.idToInfo[e.ID] = &TagInfo{
			ID:    e.ID,
			Label: e.Label,
			Kind:  e.Kind,
		}

		surfaces := []string{e.Label}
		surfaces = append(surfaces, e.Aliases...)
		surfaces = append(surfaces, autoAliases(e.Label, e.Kind)...)

		for _, surface := range surfaces {
			key := Normalize(surface)
			if key == "" {
				continue
			}

			if idx, exists := dict.patternIndex[key]; exists {
				dict.patternToIDs[idx] = appendUnique(dict.patternToIDs[idx], e.ID)
			} else {
				idx := len(dict.patterns)
				dict.patterns = append(dict.patterns, key)
				dict.patternIndex[key] = idx
				dict.patternToIDs = append(dict.patternToIDs, []string{e.ID})
			}
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	dict.ac = builder.Build(dict.patterns)

	return dict, nil
}

// Lookup finds tags matching a surface form exactly.
func (d *Dictionary) Lookup(surface string) []*TagInfo {
	key := Normalize(surface)
	idx, exists := d.patternIndex[key]
	if !exists {
		return nil
	}

	ids := d.patternToIDs[idx]
	result := make([]*TagInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := d.idToInfo[id]; ok {
			result = append(result, info)
		}
	}
	return result
}

// IsKnown checks whether a token matches any compiled tag.
func (d *Dictionary) IsKnown(token string) bool {
	_, exists := d.patternIndex[Normalize(token)]
	return exists
}

// GetInfo retrieves tag info by ID.
func (d *Dictionary) GetInfo(id string) *TagInfo {
	return d.idToInfo[id]
}

// Match is a detected tag occurrence in text.
type Match struct {
	Start       int    // Byte offset start
	End         int    // Byte offset end
	MatchedText string // Original text slice
	PatternIdx  int    // Index into the pattern table
}

// Scan finds all tag occurrences in text.
func (d *Dictionary) Scan(text string) []Match {
	lowered, offsets := foldWithOffsets(text)

	matches := d.ac.FindAll(lowered)
	result := make([]Match, 0, len(matches))

	for _, m := range matches {
		start := offsets[m.Start()]
		end := offsets[m.End()]
		result = append(result, Match{
			Start:       start,
			End:         end,
			MatchedText: text[start:end],
			PatternIdx:  m.Pattern(),
		})
	}

	return result
}

// foldWithOffsets lowercases text rune by rune and records, for every byte
// of the lowered form (plus one past the end), the byte offset of the
// originating rune in text. Lowercasing can change rune byte length
// ("İ" shrinks, "Ⱥ" grows), so matcher offsets on the lowered string must
// be translated before slicing the original.
func foldWithOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)

	for i, r := range text {
		n := b.Len()
		b.WriteRune(unicode.ToLower(r))
		for ; n < b.Len(); n++ {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(text))

	return b.String(), offsets
}

// MatchWithTags pairs a match with its resolved tags.
type MatchWithTags struct {
	Match
	Tags []*TagInfo
}

// ScanWithInfo returns matches with resolved tag info.
func (d *Dictionary) ScanWithInfo(text string) []MatchWithTags {
	matches := d.Scan(text)
	result := make([]MatchWithTags, 0, len(matches))

	for _, m := range matches {
		ids := d.patternToIDs[m.PatternIdx]
		infos := make([]*TagInfo, 0, len(ids))
		for _, id := range ids {
			if info := d.idToInfo[id]; info != nil {
				infos = append(infos, info)
			}
		}
		result = append(result, MatchWithTags{Match: m, Tags: infos})
	}

	return result
}

// autoAliases derives extra surface forms. Multi-word mentions also match
// on their first and last tokens ("@ada lovelace" -> "ada", "lovelace").
func autoAliases(label string, kind Kind) []string {
	if kind != KindMention {
		return nil
	}

	tokens := tokenize(label)
	if len(tokens) <= 1 {
		return nil
	}

	first := tokens[0]
	last := tokens[len(tokens)-1]
	var out []string

	if len(last) >= 3 {
		out = append(out, last)
	}
	if len(first) >= 4 && first != last {
		out = append(out, first)
	}
	return out
}

func appendUnique(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}
