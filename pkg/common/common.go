package common

// Paper is one record of the fixed research corpus. Papers are immutable
// input; the pipeline never writes them back.
type Paper struct {
	ID       string `json:"paper_id"`
	Title    string `json:"title"`
	Authors  string `json:"authors,omitempty"`
	Year     int    `json:"year,omitempty"`
	Journal  string `json:"journal,omitempty"`
	DOI      string `json:"doi_url,omitempty"`
	Abstract string `json:"abstract"`
}

// Text returns the combined title and abstract, the unit of text all
// extraction stages operate on.
func (p Paper) Text() string {
	text := ""
	if p.Title != "" {
		text = p.Title + ". "
	}
	return text + p.Abstract
}

// Mention is a single raw entity occurrence in one paper, before any
// deduplication. Mentions are written to the raw JSONL artifact and then
// folded into the entity catalog.
type Mention struct {
	ID             string `json:"id,omitempty"`
	PaperID        string `json:"paper_id"`
	SurfaceForm    string `json:"surface_form"`
	NormalizedName string `json:"normalized_name"`
	Type           string `json:"type"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	Source         string `json:"source,omitempty"`
}

// Entity is a deduplicated node of the knowledge graph. Unique by ID;
// the name is not guaranteed unique before filtering.
//
// RelationCount and ImportanceScore are derived during filtering and are
// always recomputable from the entity's papers and the relation catalog;
// they are carried on the record for the graph load and the read facade
// but are never an independent source of truth.
type Entity struct {
	ID              string   `json:"entity_id"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Synonyms        []string `json:"synonyms"`
	Papers          []string `json:"papers"`
	RelationCount   int      `json:"relation_count,omitempty"`
	ImportanceScore float64  `json:"importance_score,omitempty"`
}

// Relation is a directed, deduplicated edge between two catalog entities.
// Duplicate (source, relation, target) tuples are merged with accumulated
// paper support.
type Relation struct {
	ID              string   `json:"relation_id"`
	Source          string   `json:"source"`
	Type            string   `json:"relation"`
	Target          string   `json:"target"`
	Papers          []string `json:"papers"`
	EvidenceCount   int      `json:"evidence_count"`
	Confidence      float64  `json:"confidence"`
	SampleSentences []string `json:"sample_sentences,omitempty"`
}

// RelationMention is a single raw relation occurrence in one paper,
// before aggregation into the relation catalog.
type RelationMention struct {
	PaperID    string  `json:"paper_id"`
	Source     string  `json:"source"`
	Type       string  `json:"relation"`
	Target     string  `json:"target"`
	Sentence   string  `json:"sentence"`
	Confidence float64 `json:"confidence"`
}

// EntityScore holds the components of one entity's importance score.
type EntityScore struct {
	Score           float64 `json:"score"`
	PaperCount      int     `json:"paper_count"`
	RelationCount   int     `json:"relation_count"`
	Diversity       int     `json:"diversity"`
	PassesThreshold bool    `json:"passes_threshold"`
}

// EntityTypes enumerates the entity categories of the schema. Model
// labels outside this set are mapped to "process".
var EntityTypes = []string{
	"gene",
	"chemical",
	"disease",
	"cell_type",
	"tissue",
	"organism",
	"condition",
	"assay",
	"process",
}

// RelationTypes enumerates the relation categories of the schema.
var RelationTypes = []string{
	"affects",
	"increases",
	"decreases",
	"inhibits",
	"induces",
	"causes",
	"associated_with",
	"regulates",
	"expressed_in",
	"measured_in",
	"used_in",
	"part_of",
}
