// Package neo4j implements GraphStorage on a Neo4j database.
package neo4j

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/logger"
	"github.com/bioastra/spacekg/pkg/store"
)

// batchSize bounds the number of records sent per UNWIND statement.
const batchSize = 500

// Neo4jStorage stores the knowledge graph in Neo4j. Entities become
// (:Entity) nodes keyed by entity_id; relations become typed
// relationships whose type is the uppercased relation name.
type Neo4jStorage struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ store.GraphStorage = (*Neo4jStorage)(nil)

type NewNeo4jStorageParams struct {
	URI      string
	Username string
	Password string
	Database string
}

// NewNeo4jStorage connects to Neo4j and verifies connectivity.
func NewNeo4jStorage(ctx context.Context, params NewNeo4jStorageParams) (*Neo4jStorage, error) {
	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	database := params.Database
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jStorage{driver: driver, database: database}, nil
}

func (s *Neo4jStorage) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStorage) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// EnsureSchema creates the uniqueness constraint on entity_id and the
// lookup indexes. All statements are idempotent.
func (s *Neo4jStorage) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.entity_id IS UNIQUE",
		"CREATE INDEX entity_name_index IF NOT EXISTS FOR (e:Entity) ON (e.name)",
		"CREATE INDEX entity_type_index IF NOT EXISTS FOR (e:Entity) ON (e.type)",
		"CREATE INDEX entity_importance_index IF NOT EXISTS FOR (e:Entity) ON (e.importance_score)",
	}
	for _, statement := range statements {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, statement, nil)
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

func (s *Neo4jStorage) Clear(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "MATCH (n:Entity) DETACH DELETE n", nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("clearing graph: %w", err)
	}
	return nil
}

func (s *Neo4jStorage) SaveEntities(ctx context.Context, entities []common.Entity) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	query := `
		UNWIND $rows AS row
		MERGE (e:Entity {entity_id: row.entity_id})
		SET e.name = row.name,
		    e.type = row.type,
		    e.synonyms = row.synonyms,
		    e.papers = row.papers,
		    e.paper_count = row.paper_count,
		    e.relation_count = row.relation_count,
		    e.importance_score = row.importance_score
	`

	for start := 0; start < len(entities); start += batchSize {
		end := start + batchSize
		if end > len(entities) {
			end = len(entities)
		}
		rows := make([]map[string]any, 0, end-start)
		for _, entity := range entities[start:end] {
			rows = append(rows, map[string]any{
				"entity_id":        entity.ID,
				"name":             entity.Name,
				"type":             entity.Type,
				"synonyms":         entity.Synonyms,
				"papers":           entity.Papers,
				"paper_count":      len(entity.Papers),
				"relation_count":   entity.RelationCount,
				"importance_score": entity.ImportanceScore,
			})
		}
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, query, map[string]any{"rows": rows})
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("saving entities: %w", err)
		}
	}
	logger.Info("entities loaded into neo4j", "count", len(entities))
	return nil
}

func (s *Neo4jStorage) SaveRelations(ctx context.Context, relations []common.Relation) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	// Relationship types cannot be parameterized, so relations are
	// grouped by sanitized type and loaded one group at a time.
	groups := make(map[string][]common.Relation)
	for _, relation := range relations {
		groups[RelationshipType(relation.Type)] = append(groups[RelationshipType(relation.Type)], relation)
	}

	for relType, group := range groups {
		query := fmt.Sprintf(`
			UNWIND $rows AS row
			MATCH (source:Entity {entity_id: row.source})
			MATCH (target:Entity {entity_id: row.target})
			MERGE (source)-[r:%s]->(target)
			SET r.relation_id = row.relation_id,
			    r.relation = row.relation,
			    r.papers = row.papers,
			    r.evidence_count = row.evidence_count,
			    r.confidence = row.confidence,
			    r.sample_sentences = row.sample_sentences
		`, relType)

		for start := 0; start < len(group); start += batchSize {
			end := start + batchSize
			if end > len(group) {
				end = len(group)
			}
			rows := make([]map[string]any, 0, end-start)
			for _, relation := range group[start:end] {
				rows = append(rows, map[string]any{
					"relation_id":      relation.ID,
					"source":           relation.Source,
					"relation":         relation.Type,
					"target":           relation.Target,
					"papers":           relation.Papers,
					"evidence_count":   relation.EvidenceCount,
					"confidence":       relation.Confidence,
					"sample_sentences": relation.SampleSentences,
				})
			}
			_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
				_, err := tx.Run(ctx, query, map[string]any{"rows": rows})
				return nil, err
			})
			if err != nil {
				return fmt.Errorf("saving %s relations: %w", relType, err)
			}
		}
	}
	logger.Info("relations loaded into neo4j", "count", len(relations))
	return nil
}

func (s *Neo4jStorage) Stats(ctx context.Context) (store.Stats, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		stats := store.Stats{ByType: make(map[string]int)}

		countResult, err := tx.Run(ctx, `
			MATCH (e:Entity)
			OPTIONAL MATCH (:Entity)-[r]->(:Entity)
			RETURN count(DISTINCT e) AS entities, count(DISTINCT r) AS relations
		`, nil)
		if err != nil {
			return nil, err
		}
		if countResult.Next(ctx) {
			record := countResult.Record()
			if v, ok := record.Get("entities"); ok {
				stats.Entities = int(v.(int64))
			}
			if v, ok := record.Get("relations"); ok {
				stats.Relations = int(v.(int64))
			}
		}

		typeResult, err := tx.Run(ctx, `
			MATCH (e:Entity)
			RETURN e.type AS type, count(e) AS count
		`, nil)
		if err != nil {
			return nil, err
		}
		for typeResult.Next(ctx) {
			record := typeResult.Record()
			typeValue, _ := record.Get("type")
			countValue, _ := record.Get("count")
			if name, ok := typeValue.(string); ok {
				stats.ByType[name] = int(countValue.(int64))
			}
		}
		return stats, nil
	})
	if err != nil {
		return store.Stats{}, fmt.Errorf("reading graph stats: %w", err)
	}
	return result.(store.Stats), nil
}

func (s *Neo4jStorage) Entities(ctx context.Context, entityType string, limit int) ([]common.Entity, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	query := `
		MATCH (e:Entity)
		WHERE $type = '' OR e.type = $type
		RETURN e
		ORDER BY e.importance_score DESC, e.entity_id
		LIMIT $limit
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, map[string]any{"type": entityType, "limit": limit})
		if err != nil {
			return nil, err
		}
		var entities []common.Entity
		for records.Next(ctx) {
			value, _ := records.Record().Get("e")
			entities = append(entities, parseEntity(value.(neo4j.Node)))
		}
		return entities, records.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return result.([]common.Entity), nil
}

func (s *Neo4jStorage) EntityByName(ctx context.Context, name string) (common.Entity, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, `
			MATCH (e:Entity)
			WHERE toLower(e.name) = toLower($name)
			RETURN e
			LIMIT 1
		`, map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		if !records.Next(ctx) {
			return nil, store.ErrNotFound
		}
		value, _ := records.Record().Get("e")
		return parseEntity(value.(neo4j.Node)), nil
	})
	if err != nil {
		return common.Entity{}, err
	}
	return result.(common.Entity), nil
}

func (s *Neo4jStorage) RelatedPapers(ctx context.Context, entityID string, limit int) ([]string, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, `
			MATCH (e:Entity {entity_id: $entity_id})
			RETURN e.papers AS papers
		`, map[string]any{"entity_id": entityID})
		if err != nil {
			return nil, err
		}
		if !records.Next(ctx) {
			return nil, store.ErrNotFound
		}
		value, _ := records.Record().Get("papers")
		return stringList(value), nil
	})
	if err != nil {
		return nil, err
	}

	papers := result.([]string)
	sort.Strings(papers)
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

func (s *Neo4jStorage) EntityRelations(ctx context.Context, entityID string, relationType string) ([]common.Relation, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		exists, err := tx.Run(ctx, `
			MATCH (e:Entity {entity_id: $entity_id})
			RETURN e.entity_id
		`, map[string]any{"entity_id": entityID})
		if err != nil {
			return nil, err
		}
		if !exists.Next(ctx) {
			return nil, store.ErrNotFound
		}

		records, err := tx.Run(ctx, `
			MATCH (source:Entity)-[r]->(target:Entity)
			WHERE (source.entity_id = $entity_id OR target.entity_id = $entity_id)
			  AND ($relation = '' OR r.relation = $relation)
			RETURN source.entity_id AS source, target.entity_id AS target, r
			ORDER BY r.evidence_count DESC, r.relation_id
		`, map[string]any{"entity_id": entityID, "relation": relationType})
		if err != nil {
			return nil, err
		}

		var relations []common.Relation
		for records.Next(ctx) {
			record := records.Record()
			sourceValue, _ := record.Get("source")
			targetValue, _ := record.Get("target")
			relValue, _ := record.Get("r")
			relation := parseRelation(relValue.(neo4j.Relationship))
			relation.Source = sourceValue.(string)
			relation.Target = targetValue.(string)
			relations = append(relations, relation)
		}
		return relations, records.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]common.Relation), nil
}

var relationTypePattern = regexp.MustCompile(`[^A-Z0-9_]`)

// RelationshipType converts a relation name into a safe Neo4j
// relationship type: uppercased, dashes and spaces as underscores,
// everything else stripped.
func RelationshipType(relation string) string {
	name := strings.ToUpper(relation)
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = relationTypePattern.ReplaceAllString(name, "")
	if name == "" {
		name = "RELATED_TO"
	}
	return name
}

func parseEntity(node neo4j.Node) common.Entity {
	entity := common.Entity{
		ID:   stringProp(node.Props, "entity_id"),
		Name: stringProp(node.Props, "name"),
		Type: stringProp(node.Props, "type"),
	}
	entity.Synonyms = stringList(node.Props["synonyms"])
	entity.Papers = stringList(node.Props["papers"])
	if v, ok := node.Props["relation_count"].(int64); ok {
		entity.RelationCount = int(v)
	}
	if v, ok := node.Props["importance_score"].(float64); ok {
		entity.ImportanceScore = v
	}
	return entity
}

func parseRelation(rel neo4j.Relationship) common.Relation {
	relation := common.Relation{
		ID:   stringProp(rel.Props, "relation_id"),
		Type: stringProp(rel.Props, "relation"),
	}
	relation.Papers = stringList(rel.Props["papers"])
	relation.SampleSentences = stringList(rel.Props["sample_sentences"])
	if v, ok := rel.Props["evidence_count"].(int64); ok {
		relation.EvidenceCount = int(v)
	}
	if v, ok := rel.Props["confidence"].(float64); ok {
		relation.Confidence = v
	}
	return relation
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list
}
