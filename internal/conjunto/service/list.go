package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	dErrors "victus/pkg/domain-errors"
	"victus/pkg/platform/sentinel"
)

// ListFilter narrows a listing. Zero values mean "no constraint"; Name is
// a case-insensitive substring match applied after the index lookup.
type ListFilter struct {
	CityID       uuid.UUID
	DepartmentID uuid.UUID
	Name         string
}

// Get returns a single conjunto view by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ConjuntoView, error) {
	if id == uuid.Nil {
		return nil, s.resolvedError(ctx, dErrors.CodeValidation, keyRequiredUUID)
	}
	c, err := s.conjuntos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.notFoundConjunto(id)
		}
		return nil, s.classify(ctx, err)
	}
	return s.viewOf(ctx, c), nil
}

// List materializes the conjuntos matching filter, most specific index
// path first: city+department, then city, then department, then full scan.
// The name constraint filters whichever set the index produced.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*models.ConjuntoView, error) {
	var (
		conjuntos []*models.Conjunto
		err       error
	)
	switch {
	case filter.CityID != uuid.Nil && filter.DepartmentID != uuid.Nil:
		conjuntos, err = s.conjuntos.FindByCityAndDepartmentID(ctx, filter.CityID, filter.DepartmentID)
	case filter.CityID != uuid.Nil:
		conjuntos, err = s.conjuntos.FindByCityID(ctx, filter.CityID)
	case filter.DepartmentID != uuid.Nil:
		conjuntos, err = s.conjuntos.FindByDepartmentID(ctx, filter.DepartmentID)
	default:
		conjuntos, err = s.conjuntos.FindAll(ctx)
	}
	if err != nil {
		return nil, s.classify(ctx, err)
	}

	if needle := models.NormalizeName(filter.Name); needle != "" {
		// Fresh slice: the store may hand out a slice it still owns.
		filtered := make([]*models.Conjunto, 0, len(conjuntos))
		for _, c := range conjuntos {
			if strings.Contains(models.NormalizeName(c.Name), needle) {
				filtered = append(filtered, c)
			}
		}
		conjuntos = filtered
	}

	// Resolve each distinct city once; a failed resolution degrades that
	// view's display names, never the listing.
	cities := make(map[uuid.UUID]*models.City)
	views := make([]*models.ConjuntoView, 0, len(conjuntos))
	for _, c := range conjuntos {
		city, ok := cities[c.CityID]
		if !ok {
			city, err = s.cities.FindByID(ctx, c.CityID)
			if err != nil {
				s.logger.Warn("city lookup for listing failed", "ciudad_id", c.CityID, "error", err)
				city = nil
			}
			cities[c.CityID] = city
		}
		views = append(views, models.NewConjuntoView(c, city))
	}
	return views, nil
}
