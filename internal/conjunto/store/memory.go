package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	"victus/pkg/platform/sentinel"
)

// InMemoryConjuntoStore is a mutex-guarded map store. It enforces the same
// unique-phone constraint the Postgres schema carries, so the save-time
// conflict path behaves identically on both backends.
type InMemoryConjuntoStore struct {
	mu        sync.RWMutex
	conjuntos map[uuid.UUID]models.Conjunto
	cities    CityLookup
}

// CityLookup resolves cities for department-scoped queries. The in-memory
// store needs it because it has no join to lean on.
type CityLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.City, error)
}

// NewInMemoryConjuntoStore builds an empty store. cities may be nil when
// department filtering is not exercised.
func NewInMemoryConjuntoStore(cities CityLookup) *InMemoryConjuntoStore {
	return &InMemoryConjuntoStore{
		conjuntos: make(map[uuid.UUID]models.Conjunto),
		cities:    cities,
	}
}

// Save upserts by ID. A different conjunto holding the same phone yields
// sentinel.ErrConflict, mirroring the Postgres unique index on telefono.
func (s *InMemoryConjuntoStore) Save(_ context.Context, c *models.Conjunto) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Phone != "" {
		for _, existing := range s.conjuntos {
			if existing.ID != c.ID && existing.Phone == c.Phone {
				return fmt.Errorf("phone %q already registered: %w", c.Phone, sentinel.ErrConflict)
			}
		}
	}
	s.conjuntos[c.ID] = *c
	return nil
}

func (s *InMemoryConjuntoStore) FindByID(_ context.Context, id uuid.UUID) (*models.Conjunto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conjuntos[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryConjuntoStore) FindAll(_ context.Context) ([]*models.Conjunto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Conjunto, 0, len(s.conjuntos))
	for _, c := range s.conjuntos {
		copied := c
		out = append(out, &copied)
	}
	return out, nil
}

// FindByCityAndName matches on the deterministic lowercase form of the name.
func (s *InMemoryConjuntoStore) FindByCityAndName(_ context.Context, cityID uuid.UUID, name string) (*models.Conjunto, error) {
	normalized := models.NormalizeName(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conjuntos {
		if c.CityID == cityID && models.NormalizeName(c.Name) == normalized {
			copied := c
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FindAllByPhone returns zero or more matches; phone is not assumed unique
// at query time.
func (s *InMemoryConjuntoStore) FindAllByPhone(_ context.Context, phone string) ([]*models.Conjunto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Conjunto
	for _, c := range s.conjuntos {
		if c.Phone != "" && c.Phone == phone {
			copied := c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryConjuntoStore) FindByCityID(_ context.Context, cityID uuid.UUID) ([]*models.Conjunto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Conjunto
	for _, c := range s.conjuntos {
		if c.CityID == cityID {
			copied := c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryConjuntoStore) FindByDepartmentID(ctx context.Context, departmentID uuid.UUID) ([]*models.Conjunto, error) {
	s.mu.RLock()
	all := make([]models.Conjunto, 0, len(s.conjuntos))
	for _, c := range s.conjuntos {
		all = append(all, c)
	}
	s.mu.RUnlock()

	var out []*models.Conjunto
	for _, c := range all {
		city, err := s.cityOf(ctx, c.CityID)
		if err != nil {
			continue
		}
		if city.DepartmentID == departmentID {
			copied := c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryConjuntoStore) FindByCityAndDepartmentID(ctx context.Context, cityID, departmentID uuid.UUID) ([]*models.Conjunto, error) {
	byCity, err := s.FindByCityID(ctx, cityID)
	if err != nil {
		return nil, err
	}
	var out []*models.Conjunto
	for _, c := range byCity {
		city, err := s.cityOf(ctx, c.CityID)
		if err != nil {
			continue
		}
		if city.DepartmentID == departmentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *InMemoryConjuntoStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conjuntos[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.conjuntos, id)
	return nil
}

func (s *InMemoryConjuntoStore) cityOf(ctx context.Context, cityID uuid.UUID) (*models.City, error) {
	if s.cities == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.cities.FindByID(ctx, cityID)
}

// InMemoryCityStore is a read-mostly city lookup seeded at startup.
type InMemoryCityStore struct {
	mu     sync.RWMutex
	cities map[uuid.UUID]models.City
}

func NewInMemoryCityStore(seed ...models.City) *InMemoryCityStore {
	s := &InMemoryCityStore{cities: make(map[uuid.UUID]models.City, len(seed))}
	for _, c := range seed {
		s.cities[c.ID] = c
	}
	return s
}

func (s *InMemoryCityStore) Put(city models.City) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities[city.ID] = city
}

func (s *InMemoryCityStore) FindByID(_ context.Context, id uuid.UUID) (*models.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cities[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// InMemoryAdministratorStore is a read-mostly administrator lookup seeded at
// startup.
type InMemoryAdministratorStore struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]models.Administrator
}

func NewInMemoryAdministratorStore(seed ...models.Administrator) *InMemoryAdministratorStore {
	s := &InMemoryAdministratorStore{admins: make(map[uuid.UUID]models.Administrator, len(seed))}
	for _, a := range seed {
		s.admins[a.ID] = a
	}
	return s
}

func (s *InMemoryAdministratorStore) Put(admin models.Administrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[admin.ID] = admin
}

func (s *InMemoryAdministratorStore) FindByID(_ context.Context, id uuid.UUID) (*models.Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}
