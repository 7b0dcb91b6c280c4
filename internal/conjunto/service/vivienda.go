package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	dErrors "victus/pkg/domain-errors"
	"victus/pkg/platform/sentinel"
)

const (
	defaultViviendaPageSize = 20
	maxViviendaPageSize     = 100
)

// CreateVivienda registers a housing unit inside an existing conjunto. The
// numero must be unique within that conjunto; a collision is a conflict, not
// a validation failure.
func (s *Service) CreateVivienda(ctx context.Context, conjuntoID uuid.UUID, req *models.CreateViviendaRequest) (*models.Vivienda, error) {
	if conjuntoID == uuid.Nil {
		return nil, s.resolvedError(ctx, dErrors.CodeValidation, keyRequiredUUID)
	}
	req.Normalize()

	if err := s.requireConjunto(ctx, conjuntoID); err != nil {
		return nil, err
	}

	if req.Numero != "" {
		_, err := s.viviendas.FindByConjuntoAndNumero(ctx, conjuntoID, req.Numero)
		switch {
		case err == nil:
			return nil, s.duplicateNumero(conjuntoID, req.Numero)
		case errors.Is(err, sentinel.ErrNotFound):
			// No duplicate.
		default:
			return nil, s.classify(ctx, err)
		}
	}

	v, err := models.NewVivienda(uuid.New(), conjuntoID, req.Numero, req.Tipo, req.Estado)
	if err != nil {
		return nil, s.asValidation(ctx, err)
	}

	if err := s.viviendas.Save(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Concurrent writer claimed the numero between check and insert.
			return nil, s.duplicateNumero(conjuntoID, v.Numero)
		}
		return nil, s.classify(ctx, err)
	}

	if s.metrics != nil {
		s.metrics.IncrementViviendasCreated()
	}
	s.logger.Info("vivienda created", "id", v.ID, "conjunto_id", conjuntoID, "numero", v.Numero)
	return v, nil
}

// ListViviendas pages the viviendas of a conjunto ordered by numero. page is
// zero-based; a zero or negative size falls back to the default page size.
func (s *Service) ListViviendas(ctx context.Context, conjuntoID uuid.UUID, page, size int) (*models.ViviendaPage, error) {
	if conjuntoID == uuid.Nil {
		return nil, s.resolvedError(ctx, dErrors.CodeValidation, keyRequiredUUID)
	}
	if err := s.requireConjunto(ctx, conjuntoID); err != nil {
		return nil, err
	}

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultViviendaPageSize
	}
	if size > maxViviendaPageSize {
		size = maxViviendaPageSize
	}

	items, total, err := s.viviendas.FindByConjuntoID(ctx, conjuntoID, page*size, size)
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	if items == nil {
		items = []*models.Vivienda{}
	}
	return &models.ViviendaPage{
		Content:       items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
	}, nil
}

// requireConjunto fails with not-found unless the owning conjunto exists.
func (s *Service) requireConjunto(ctx context.Context, conjuntoID uuid.UUID) error {
	_, err := s.conjuntos.FindByID(ctx, conjuntoID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.notFoundConjunto(conjuntoID)
		}
		return s.classify(ctx, err)
	}
	return nil
}

func (s *Service) duplicateNumero(conjuntoID uuid.UUID, numero string) *dErrors.Error {
	return dErrors.NewWithTechnical(dErrors.CodeConflict,
		"Ya existe una vivienda con ese número en el conjunto.",
		"numero "+numero+" already registered in conjunto "+conjuntoID.String())
}
