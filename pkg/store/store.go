// Package store defines the graph storage contract the pipeline loads
// into and the read facade queries from.
package store

import (
	"context"
	"errors"

	"github.com/bioastra/spacekg/pkg/common"
)

// ErrNotFound is returned by lookups for entities that do not exist.
var ErrNotFound = errors.New("entity not found")

// Stats holds the node and edge counts of the stored graph.
type Stats struct {
	Entities  int            `json:"entities"`
	Relations int            `json:"relations"`
	ByType    map[string]int `json:"by_type,omitempty"`
}

// GraphStorage is the contract between the load stage, the read facade
// and the visualization renderer. Implementations must treat entity
// ids as the unique node key and (source, relation, target) as the
// unique edge key.
type GraphStorage interface {
	// EnsureSchema creates constraints and indexes. Idempotent.
	EnsureSchema(ctx context.Context) error

	// Clear removes all stored nodes and edges.
	Clear(ctx context.Context) error

	// SaveEntities upserts the given entities as nodes.
	SaveEntities(ctx context.Context, entities []common.Entity) error

	// SaveRelations upserts the given relations as edges. Edges whose
	// endpoints are missing are skipped, not an error.
	SaveRelations(ctx context.Context, relations []common.Relation) error

	// Stats returns node and edge counts.
	Stats(ctx context.Context) (Stats, error)

	// Entities lists stored entities ordered by importance score
	// descending, optionally restricted to one type. limit <= 0 means
	// a default page of 50.
	Entities(ctx context.Context, entityType string, limit int) ([]common.Entity, error)

	// EntityByName resolves an entity by exact case-insensitive name.
	EntityByName(ctx context.Context, name string) (common.Entity, error)

	// RelatedPapers lists the paper ids an entity is mentioned in.
	RelatedPapers(ctx context.Context, entityID string, limit int) ([]string, error)

	// EntityRelations lists the edges touching an entity, optionally
	// restricted to one relation type.
	EntityRelations(ctx context.Context, entityID string, relationType string) ([]common.Relation, error)

	// Close releases underlying connections.
	Close(ctx context.Context) error
}

// DefaultPageSize bounds list endpoints when no limit is given.
const DefaultPageSize = 50
