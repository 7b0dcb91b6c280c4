package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	dErrors "victus/pkg/domain-errors"
	"victus/pkg/platform/sentinel"
)

// Delete removes a conjunto. The DELETED event, carrying the full final
// state, is emitted before the store delete so subscribers always see the
// record that is about to disappear; emission is best-effort either way.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return s.resolvedError(ctx, dErrors.CodeValidation, keyRequiredUUID)
	}

	c, err := s.conjuntos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.notFoundConjunto(id)
		}
		return s.classify(ctx, err)
	}

	view := s.viewOf(ctx, c)
	s.publish(ctx, models.EventDeleted, view)

	// Viviendas go first: the conjunto row cannot disappear while units
	// still reference it.
	if err := s.viviendas.DeleteByConjuntoID(ctx, id); err != nil {
		return s.classify(ctx, err)
	}
	if err := s.conjuntos.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Raced with another deletion; same outcome for the caller.
			return s.notFoundConjunto(id)
		}
		return s.classify(ctx, err)
	}

	if s.metrics != nil {
		s.metrics.IncrementConjuntosDeleted()
	}
	s.logger.Info("conjunto deleted", "id", id)
	return nil
}

func (s *Service) notFoundConjunto(id uuid.UUID) *dErrors.Error {
	return dErrors.NewWithTechnical(dErrors.CodeNotFound,
		"El conjunto residencial indicado no existe.",
		"conjunto "+id.String()+" not found")
}
