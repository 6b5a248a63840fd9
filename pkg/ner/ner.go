// Package ner provides named entity recognition over paper text.
//
// Recognition models are external collaborators: the pipeline only
// requires that a Recognizer maps text to mentions in the shared schema.
// The rule-based recognizer is deterministic; the model-backed one
// delegates to a configured AI adapter.
package ner

import (
	"context"
	"regexp"
	"strings"

	"github.com/bioastra/spacekg/pkg/common"
)

// Recognizer extracts raw entity mentions from one paper's text.
type Recognizer interface {
	Recognize(ctx context.Context, paperID string, text string) ([]common.Mention, error)
}

// labelMapping maps model-reported entity labels onto the schema's
// entity types. Covers the BC5CDR and BioNLP13CG label sets the
// biomedical models report.
var labelMapping = map[string]string{
	"DISEASE":  "disease",
	"CHEMICAL": "chemical",

	"GENE_OR_GENE_PRODUCT":            "gene",
	"SIMPLE_CHEMICAL":                 "chemical",
	"CANCER":                          "disease",
	"CELL":                            "cell_type",
	"TISSUE":                          "tissue",
	"ORGAN":                           "tissue",
	"ORGANISM":                        "organism",
	"ANATOMICAL_SYSTEM":               "tissue",
	"MULTI-TISSUE_STRUCTURE":          "tissue",
	"ORGANISM_SUBDIVISION":            "tissue",
	"CELLULAR_COMPONENT":              "cell_type",
	"AMINO_ACID":                      "chemical",
	"ORGANISM_SUBSTANCE":              "chemical",
	"PATHOLOGICAL_FORMATION":          "disease",
	"DEVELOPING_ANATOMICAL_STRUCTURE": "tissue",
	"IMMATERIAL_ANATOMICAL_ENTITY":    "tissue",
}

// MapLabel translates a model label to a schema entity type. Schema
// types pass through unchanged; anything unknown becomes "process".
func MapLabel(label string) string {
	if mapped, ok := labelMapping[strings.ToUpper(label)]; ok {
		return mapped
	}
	lower := strings.ToLower(label)
	for _, t := range common.EntityTypes {
		if lower == t {
			return t
		}
	}
	return "process"
}

// Synonyms maps frequent surface variants onto canonical entity names.
var Synonyms = map[string]string{
	"micro-gravity":          "microgravity",
	"micro gravity":          "microgravity",
	"weightlessness":         "microgravity",
	"simulated microgravity": "microgravity",
	"space flight":           "spaceflight",
	"space-flight":           "spaceflight",
	"hind limb unloading":    "hindlimb unloading",
	"hindlimb suspension":    "hindlimb unloading",
	"cosmic radiation":       "space radiation",
	"ionizing radiation":     "radiation",
	"iss":                    "international space station",
	"bone density loss":      "bone loss",
	"muscle wasting":         "muscle atrophy",
	"mice":                   "mouse",
	"rats":                   "rat",
	"humans":                 "human",
}

var trailingPunct = regexp.MustCompile(`[.,;:!?]+$`)

// Normalize lowercases a surface form, strips trailing punctuation, and
// resolves known synonyms to their canonical name.
func Normalize(surface string) string {
	normalized := strings.ToLower(strings.TrimSpace(surface))
	normalized = trailingPunct.ReplaceAllString(normalized, "")

	if canonical, ok := Synonyms[normalized]; ok {
		return canonical
	}
	for key, value := range Synonyms {
		if strings.Contains(normalized, key) {
			normalized = strings.ReplaceAll(normalized, key, value)
		}
	}
	return normalized
}
