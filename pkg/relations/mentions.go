package relations

import (
	"sort"
	"strings"

	"github.com/bioastra/spacekg/pkg/common"
)

// EntityMatch is one occurrence of a catalog entity inside a sentence.
type EntityMatch struct {
	EntityID string
	Name     string
	Start    int
	End      int
}

// Matcher locates catalog entities in free text by canonical name or
// synonym. Longer names are tried first so that a longer match always
// wins over a shorter one it contains.
type Matcher struct {
	terms []matcherTerm
}

type matcherTerm struct {
	text     string
	entityID string
}

// NewMatcher builds a matcher over the given entities.
func NewMatcher(entities []common.Entity) *Matcher {
	var terms []matcherTerm
	seen := make(map[string]bool)
	add := func(text, entityID string) {
		text = strings.ToLower(strings.TrimSpace(text))
		if len(text) < 3 || seen[text] {
			return
		}
		seen[text] = true
		terms = append(terms, matcherTerm{text: text, entityID: entityID})
	}

	for _, entity := range entities {
		add(entity.Name, entity.ID)
		for _, synonym := range entity.Synonyms {
			add(synonym, entity.ID)
		}
	}

	sort.Slice(terms, func(i, j int) bool { return len(terms[i].text) > len(terms[j].text) })
	return &Matcher{terms: terms}
}

// Find returns the non-overlapping entity matches in a sentence,
// ordered by position.
func (m *Matcher) Find(sentence string) []EntityMatch {
	lower := strings.ToLower(sentence)
	var matches []EntityMatch

	for _, term := range m.terms {
		offset := 0
		for {
			idx := strings.Index(lower[offset:], term.text)
			if idx < 0 {
				break
			}
			start := offset + idx
			end := start + len(term.text)
			offset = end
			if !wordBoundary(lower, start-1) || !wordBoundary(lower, end) {
				continue
			}
			if overlaps(matches, start, end) {
				continue
			}
			matches = append(matches, EntityMatch{
				EntityID: term.entityID,
				Name:     term.text,
				Start:    start,
				End:      end,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

func overlaps(matches []EntityMatch, start, end int) bool {
	for _, m := range matches {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}

func wordBoundary(text string, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	c := text[pos]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_')
}
