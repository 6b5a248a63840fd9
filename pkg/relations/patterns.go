package relations

import (
	"regexp"
	"strings"
)

// Confidence levels per extraction source. Explicit phrase patterns
// are more reliable than a bare verb between two mentions.
const (
	patternConfidence = 0.7
	verbConfidence    = 0.6
)

// phrasePattern maps an explicit textual construction between two
// entity mentions onto a relation type. The pattern is applied to the
// text between the two mentions only.
type phrasePattern struct {
	re       *regexp.Regexp
	relation string
	swap     bool // relation runs target-to-source
}

var phrasePatterns = []phrasePattern{
	{re: regexp.MustCompile(`^\s*-?induced\s*$`), relation: "induces", swap: true},
	{re: regexp.MustCompile(`(?i)^\s*leads? to\s*$`), relation: "causes"},
	{re: regexp.MustCompile(`(?i)^\s*results? in\s*$`), relation: "causes"},
	{re: regexp.MustCompile(`(?i)^\s*is (?:a )?(?:known )?cause of\s*$`), relation: "causes"},
	{re: regexp.MustCompile(`(?i)^\s*is associated with\s*$`), relation: "associated_with"},
	{re: regexp.MustCompile(`(?i)^\s*correlates? with\s*$`), relation: "associated_with"},
	{re: regexp.MustCompile(`(?i)^\s*is expressed in\s*$`), relation: "expressed_in"},
	{re: regexp.MustCompile(`(?i)^\s*is (?:a )?part of\s*$`), relation: "part_of"},
	{re: regexp.MustCompile(`(?i)^\s*was measured (?:in|by|with)\s*$`), relation: "measured_in"},
	{re: regexp.MustCompile(`(?i)^\s*effects? of\s*$`), relation: "affects", swap: true},
	{re: regexp.MustCompile(`(?i)^\s*response to\s*$`), relation: "affects", swap: true},
}

// verbLexicon maps verb stems to relation types. Stems are matched as
// prefixes of whole words, so "inhibit" covers "inhibits", "inhibited"
// and "inhibition of".
var verbLexicon = []struct {
	stem     string
	relation string
}{
	{"upregulat", "increases"},
	{"downregulat", "decreases"},
	{"increas", "increases"},
	{"elevat", "increases"},
	{"enhanc", "increases"},
	{"decreas", "decreases"},
	{"reduc", "decreases"},
	{"suppress", "decreases"},
	{"inhibit", "inhibits"},
	{"induc", "induces"},
	{"trigger", "induces"},
	{"promot", "induces"},
	{"caus", "causes"},
	{"associat", "associated_with"},
	{"correlat", "associated_with"},
	{"link", "associated_with"},
	{"relat", "associated_with"},
	{"regulat", "regulates"},
	{"control", "regulates"},
	{"express", "expressed_in"},
	{"measur", "measured_in"},
	{"affect", "affects"},
	{"us", "used_in"},
	{"impact", "affects"},
	{"alter", "affects"},
	{"modulat", "regulates"},
}

// matchPhrase checks the text between two mentions against the
// explicit phrase patterns.
func matchPhrase(between string) (relation string, swap bool, ok bool) {
	for _, pattern := range phrasePatterns {
		if pattern.re.MatchString(between) {
			return pattern.relation, pattern.swap, true
		}
	}
	return "", false, false
}

// matchVerb looks for the first lexicon verb between two mentions.
func matchVerb(between string) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(between), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, word := range words {
		for _, entry := range verbLexicon {
			if entry.stem == "us" {
				// Too short for prefixing; match forms of "use" exactly.
				if word == "used" || word == "uses" || word == "using" {
					return entry.relation, true
				}
				continue
			}
			if strings.HasPrefix(word, entry.stem) {
				return entry.relation, true
			}
		}
	}
	return "", false
}
