package ner

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bioastra/spacekg/pkg/common"
)

// conditionLexicon holds spaceflight-related experimental conditions
// that biomedical models routinely miss.
var conditionLexicon = []string{
	"microgravity",
	"simulated microgravity",
	"spaceflight",
	"hindlimb unloading",
	"hindlimb suspension",
	"space radiation",
	"cosmic radiation",
	"galactic cosmic rays",
	"ionizing radiation",
	"hypergravity",
	"partial gravity",
	"bed rest",
	"isolation",
	"confinement",
	"international space station",
	"parabolic flight",
	"clinostat",
	"random positioning machine",
	"rotating wall vessel",
	"centrifugation",
	"vibration",
	"hypoxia",
	"oxidative stress",
}

// assayPatterns match laboratory technique names. Each pattern is
// anchored on word boundaries so substrings inside longer tokens are
// not matched.
var assayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bRNA[- ]?seq(?:uencing)?\b`),
	regexp.MustCompile(`(?i)\b(?:RT[- ]?)?q?PCR\b`),
	regexp.MustCompile(`(?i)\bwestern blot(?:ting)?\b`),
	regexp.MustCompile(`(?i)\bflow cytometry\b`),
	regexp.MustCompile(`(?i)\bELISA\b`),
	regexp.MustCompile(`(?i)\bmass spectrometry\b`),
	regexp.MustCompile(`(?i)\bimmunohistochemistry\b`),
	regexp.MustCompile(`(?i)\bimmunofluorescence\b`),
	regexp.MustCompile(`(?i)\bmicroarray(?:s)?\b`),
	regexp.MustCompile(`(?i)\bmicro[- ]?CT\b`),
	regexp.MustCompile(`(?i)\bhistolog(?:y|ical analysis)\b`),
	regexp.MustCompile(`(?i)\btranscriptom(?:e|ic)s?(?: analysis| profiling)?\b`),
	regexp.MustCompile(`(?i)\bproteomics?\b`),
	regexp.MustCompile(`(?i)\bmetabolomics?\b`),
	regexp.MustCompile(`(?i)\bin situ hybridi[sz]ation\b`),
	regexp.MustCompile(`(?i)\bgene expression (?:analysis|profiling)\b`),
}

// organismLexicon covers the model organisms of the corpus.
var organismLexicon = []string{
	"mouse", "mice", "rat", "rats", "human", "humans",
	"arabidopsis", "arabidopsis thaliana",
	"drosophila", "drosophila melanogaster",
	"c. elegans", "caenorhabditis elegans",
	"zebrafish", "danio rerio",
	"e. coli", "escherichia coli",
	"saccharomyces cerevisiae", "yeast",
}

// RulesRecognizer finds mentions with lexicons and patterns only. It
// is the deterministic default when no AI adapter is configured, and
// complements a model-backed recognizer for domain terms either way.
type RulesRecognizer struct {
	conditions []string
	organisms  []string
}

// NewRulesRecognizer builds a recognizer with the built-in lexicons.
func NewRulesRecognizer() *RulesRecognizer {
	conditions := make([]string, len(conditionLexicon))
	copy(conditions, conditionLexicon)
	organisms := make([]string, len(organismLexicon))
	copy(organisms, organismLexicon)

	// Longest-first so "simulated microgravity" wins over "microgravity".
	sort.Slice(conditions, func(i, j int) bool { return len(conditions[i]) > len(conditions[j]) })
	sort.Slice(organisms, func(i, j int) bool { return len(organisms[i]) > len(organisms[j]) })

	return &RulesRecognizer{conditions: conditions, organisms: organisms}
}

// Recognize scans the text for conditions, organisms and assays. The
// returned mentions carry byte offsets into the original text.
func (r *RulesRecognizer) Recognize(_ context.Context, paperID string, text string) ([]common.Mention, error) {
	var mentions []common.Mention
	claimed := make([]span, 0, 16)

	addMatch := func(start, end int, entityType string) {
		for _, c := range claimed {
			if start < c.end && c.start < end {
				return
			}
		}
		surface := text[start:end]
		claimed = append(claimed, span{start: start, end: end})
		mentions = append(mentions, common.Mention{
			ID:             fmt.Sprintf("%s_m%04d", paperID, len(mentions)),
			PaperID:        paperID,
			SurfaceForm:    surface,
			NormalizedName: Normalize(surface),
			Type:           entityType,
			Start:          start,
			End:            end,
			Source:         "rules",
		})
	}

	for _, pattern := range assayPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			addMatch(loc[0], loc[1], "assay")
		}
	}
	for _, term := range r.conditions {
		for _, loc := range findTermSpans(text, term) {
			addMatch(loc.start, loc.end, "condition")
		}
	}
	for _, term := range r.organisms {
		for _, loc := range findTermSpans(text, term) {
			addMatch(loc.start, loc.end, "organism")
		}
	}

	sort.Slice(mentions, func(i, j int) bool { return mentions[i].Start < mentions[j].Start })
	return mentions, nil
}

type span struct {
	start int
	end   int
}

// findTermSpans locates case-insensitive occurrences of term bounded
// by non-word characters on both sides.
func findTermSpans(text, term string) []span {
	lower := strings.ToLower(text)
	term = strings.ToLower(term)

	var spans []span
	offset := 0
	for {
		idx := strings.Index(lower[offset:], term)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(term)
		if isBoundary(lower, start-1) && isBoundary(lower, end) {
			spans = append(spans, span{start: start, end: end})
		}
		offset = end
	}
	return spans
}

func isBoundary(text string, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	c := text[pos]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_')
}
