package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	dErrors "victus/pkg/domain-errors"
	"victus/pkg/platform/sentinel"
)

// Update replaces a conjunto's data wholesale, re-running the same
// dependent-entity and duplicate checks as Create with the record itself
// excluded from collision detection. Emits an UPDATED event on success.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateConjuntoRequest) (*models.ConjuntoView, error) {
	req.Normalize()

	if id == uuid.Nil || req.CityID == uuid.Nil || req.AdministratorID == uuid.Nil {
		return nil, s.resolvedError(ctx, dErrors.CodeValidation, keyRequiredUUID)
	}
	if req.Phone != "" && !models.ValidPhone(req.Phone) {
		return nil, s.resolvedError(ctx, dErrors.CodeValidation, keyPhoneFormat)
	}

	if _, err := s.conjuntos.FindByID(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.notFoundConjunto(id)
		}
		return nil, s.classify(ctx, err)
	}

	city, admin, err := s.loadDependencies(ctx, req.CityID, req.AdministratorID)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicates(ctx, id, req.CityID, req.Name, req.Phone); err != nil {
		return nil, err
	}

	c, err := models.NewConjunto(id, city.ID, admin.ID, req.Name, req.Address, req.Phone)
	if err != nil {
		return nil, s.asValidation(ctx, err)
	}

	if err := s.conjuntos.Save(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, s.resolvedError(ctx, dErrors.CodeConflict, keyPhoneDuplicate)
		}
		return nil, s.classify(ctx, err)
	}

	view := models.NewConjuntoView(c, city)
	s.publish(ctx, models.EventUpdated, view)
	if s.metrics != nil {
		s.metrics.IncrementConjuntosUpdated()
	}
	s.logger.Info("conjunto updated", "id", c.ID)
	return view, nil
}
