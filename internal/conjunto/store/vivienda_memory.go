package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	"victus/pkg/platform/sentinel"
)

// InMemoryViviendaStore is a mutex-guarded map store. It enforces the same
// per-conjunto numero uniqueness the Postgres schema carries.
type InMemoryViviendaStore struct {
	mu        sync.RWMutex
	viviendas map[uuid.UUID]models.Vivienda
}

func NewInMemoryViviendaStore() *InMemoryViviendaStore {
	return &InMemoryViviendaStore{viviendas: make(map[uuid.UUID]models.Vivienda)}
}

// Save upserts by ID. A different vivienda holding the same numero in the
// same conjunto yields sentinel.ErrConflict.
func (s *InMemoryViviendaStore) Save(_ context.Context, v *models.Vivienda) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.viviendas {
		if existing.ID != v.ID && existing.ConjuntoID == v.ConjuntoID && existing.Numero == v.Numero {
			return fmt.Errorf("numero %q already registered in conjunto %s: %w",
				v.Numero, v.ConjuntoID, sentinel.ErrConflict)
		}
	}
	s.viviendas[v.ID] = *v
	return nil
}

func (s *InMemoryViviendaStore) FindByConjuntoAndNumero(_ context.Context, conjuntoID uuid.UUID, numero string) (*models.Vivienda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.viviendas {
		if v.ConjuntoID == conjuntoID && v.Numero == numero {
			copied := v
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FindByConjuntoID returns one offset/limit page ordered by numero, plus the
// total match count. An offset past the end is an empty page, not an error.
func (s *InMemoryViviendaStore) FindByConjuntoID(_ context.Context, conjuntoID uuid.UUID, offset, limit int) ([]*models.Vivienda, int, error) {
	s.mu.RLock()
	matched := make([]models.Vivienda, 0, len(s.viviendas))
	for _, v := range s.viviendas {
		if v.ConjuntoID == conjuntoID {
			matched = append(matched, v)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Numero < matched[j].Numero })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*models.Vivienda, 0, end-offset)
	for i := offset; i < end; i++ {
		copied := matched[i]
		out = append(out, &copied)
	}
	return out, total, nil
}

// DeleteByConjuntoID removes every vivienda of a conjunto. Removing zero
// rows is not an error.
func (s *InMemoryViviendaStore) DeleteByConjuntoID(_ context.Context, conjuntoID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.viviendas {
		if v.ConjuntoID == conjuntoID {
			delete(s.viviendas, id)
		}
	}
	return nil
}
