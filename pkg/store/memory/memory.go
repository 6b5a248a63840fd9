// Package memory provides an in-process GraphStorage used by tests
// and by pipeline runs without a configured database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/store"
)

// MemoryStorage keeps the graph in maps guarded by one RWMutex.
type MemoryStorage struct {
	mu        sync.RWMutex
	entities  map[string]common.Entity
	relations map[string]common.Relation
}

var _ store.GraphStorage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entities:  make(map[string]common.Entity),
		relations: make(map[string]common.Relation),
	}
}

func (s *MemoryStorage) EnsureSchema(_ context.Context) error { return nil }

func (s *MemoryStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = make(map[string]common.Entity)
	s.relations = make(map[string]common.Relation)
	return nil
}

func (s *MemoryStorage) SaveEntities(_ context.Context, entities []common.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entity := range entities {
		s.entities[entity.ID] = entity
	}
	return nil
}

func (s *MemoryStorage) SaveRelations(_ context.Context, relations []common.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, relation := range relations {
		if _, ok := s.entities[relation.Source]; !ok {
			continue
		}
		if _, ok := s.entities[relation.Target]; !ok {
			continue
		}
		key := relation.Source + "|" + relation.Type + "|" + relation.Target
		s.relations[key] = relation
	}
	return nil
}

func (s *MemoryStorage) Stats(_ context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := store.Stats{
		Entities:  len(s.entities),
		Relations: len(s.relations),
		ByType:    make(map[string]int),
	}
	for _, entity := range s.entities {
		stats.ByType[entity.Type]++
	}
	return stats, nil
}

func (s *MemoryStorage) Entities(_ context.Context, entityType string, limit int) ([]common.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	entities := make([]common.Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		if entityType != "" && entity.Type != entityType {
			continue
		}
		entities = append(entities, entity)
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].ImportanceScore != entities[j].ImportanceScore {
			return entities[i].ImportanceScore > entities[j].ImportanceScore
		}
		return entities[i].ID < entities[j].ID
	})
	if len(entities) > limit {
		entities = entities[:limit]
	}
	return entities, nil
}

func (s *MemoryStorage) EntityByName(_ context.Context, name string) (common.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entity := range s.entities {
		if strings.EqualFold(entity.Name, name) {
			return entity, nil
		}
	}
	return common.Entity{}, store.ErrNotFound
}

func (s *MemoryStorage) RelatedPapers(_ context.Context, entityID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[entityID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	papers := make([]string, len(entity.Papers))
	copy(papers, entity.Papers)
	sort.Strings(papers)
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

func (s *MemoryStorage) EntityRelations(_ context.Context, entityID string, relationType string) ([]common.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entities[entityID]; !ok {
		return nil, store.ErrNotFound
	}
	var relations []common.Relation
	for _, relation := range s.relations {
		if relation.Source != entityID && relation.Target != entityID {
			continue
		}
		if relationType != "" && relation.Type != relationType {
			continue
		}
		relations = append(relations, relation)
	}
	sort.Slice(relations, func(i, j int) bool {
		if relations[i].EvidenceCount != relations[j].EvidenceCount {
			return relations[i].EvidenceCount > relations[j].EvidenceCount
		}
		return relations[i].ID < relations[j].ID
	})
	return relations, nil
}

func (s *MemoryStorage) Close(_ context.Context) error { return nil }
