package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"victus/internal/conjunto/models"
	"victus/internal/lookup"
	dErrors "victus/pkg/domain-errors"
	"victus/pkg/platform/sentinel"
)

// Create runs the full registration pipeline: precondition checks,
// concurrent dependent-entity resolution, ordered duplicate detection,
// persistence, and a best-effort CREATED event. The returned view carries
// the denormalized city and department names.
func (s *Service) Create(ctx context.Context, req *models.CreateConjuntoRequest) (*models.ConjuntoView, error) {
	req.Normalize()

	if req.CityID == uuid.Nil || req.AdministratorID == uuid.Nil {
		return nil, s.resolvedError(ctx, dErrors.CodeValidation, keyRequiredUUID)
	}
	if req.Phone != "" && !models.ValidPhone(req.Phone) {
		return nil, s.resolvedError(ctx, dErrors.CodeValidation, keyPhoneFormat)
	}

	s.observeMaxLimit(ctx)

	city, admin, err := s.loadDependencies(ctx, req.CityID, req.AdministratorID)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicates(ctx, uuid.Nil, req.CityID, req.Name, req.Phone); err != nil {
		return nil, err
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	} else if err := s.requireFreshID(ctx, id); err != nil {
		return nil, err
	}
	c, err := models.NewConjunto(id, city.ID, admin.ID, req.Name, req.Address, req.Phone)
	if err != nil {
		return nil, s.asValidation(ctx, err)
	}

	if err := s.conjuntos.Save(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// The race the pre-check cannot close: another writer took the
			// phone between the duplicate check and the insert.
			return nil, s.resolvedError(ctx, dErrors.CodeConflict, keyPhoneDuplicate)
		}
		return nil, s.classify(ctx, err)
	}

	view := models.NewConjuntoView(c, city)
	s.publish(ctx, models.EventCreated, view)
	if s.metrics != nil {
		s.metrics.IncrementConjuntosCreated()
	}
	s.logger.Info("conjunto created", "id", c.ID, "ciudad_id", c.CityID)
	return view, nil
}

// requireFreshID rejects a caller-supplied ID that already names a stored
// conjunto. Save is an upsert, so without this check a create request could
// overwrite an existing record while skipping the duplicate pipeline.
func (s *Service) requireFreshID(ctx context.Context, id uuid.UUID) error {
	_, err := s.conjuntos.FindByID(ctx, id)
	switch {
	case err == nil:
		return dErrors.NewWithTechnical(dErrors.CodeConflict,
			"Ya existe un conjunto residencial con ese identificador.",
			"conjunto "+id.String()+" already exists")
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		return s.classify(ctx, err)
	}
}

// loadDependencies resolves the referenced city and administrator
// concurrently. Either side missing, or an inactive administrator, fails
// the whole load with a not-found error.
func (s *Service) loadDependencies(ctx context.Context, cityID, adminID uuid.UUID) (*models.City, *models.Administrator, error) {
	var (
		city  *models.City
		admin *models.Administrator
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.cities.FindByID(gctx, cityID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewWithTechnical(dErrors.CodeNotFound,
					"La ciudad indicada no existe.",
					"city "+cityID.String()+" not found")
			}
			return err
		}
		city = c
		return nil
	})
	g.Go(func() error {
		a, err := s.admins.FindByID(gctx, adminID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewWithTechnical(dErrors.CodeNotFound,
					"El administrador indicado no existe.",
					"administrator "+adminID.String()+" not found")
			}
			return err
		}
		if !a.Active {
			return dErrors.NewWithTechnical(dErrors.CodeNotFound,
				"El administrador indicado no se encuentra activo.",
				"administrator "+adminID.String()+" inactive")
		}
		admin = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, s.classify(ctx, err)
	}
	return city, admin, nil
}

// checkDuplicates enforces the two uniqueness rules in fixed order: phone
// first, then name within the city. excludeID skips the record being
// updated so it never collides with itself.
func (s *Service) checkDuplicates(ctx context.Context, excludeID, cityID uuid.UUID, name, phone string) error {
	if phone != "" {
		matches, err := s.conjuntos.FindAllByPhone(ctx, phone)
		if err != nil {
			return s.classify(ctx, err)
		}
		for _, m := range matches {
			if m.ID != excludeID {
				return s.resolvedError(ctx, dErrors.CodeConflict, keyPhoneDuplicate)
			}
		}
	}

	existing, err := s.conjuntos.FindByCityAndName(ctx, cityID, name)
	switch {
	case err == nil:
		if existing.ID != excludeID {
			return s.resolvedError(ctx, dErrors.CodeConflict, keyNameDuplicate)
		}
	case errors.Is(err, sentinel.ErrNotFound):
		// No duplicate.
	default:
		return s.classify(ctx, err)
	}
	return nil
}

// asValidation downgrades a constructor invariant violation to the
// validation code the API surfaces for bad input.
func (s *Service) asValidation(ctx context.Context, err error) error {
	if de, ok := dErrors.AsError(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.NewWithTechnical(dErrors.CodeValidation, de.Message, de.Technical)
	}
	return s.classify(ctx, err)
}

// observeMaxLimit resolves the configured conjunto limit for logging only.
// Whatever happens here, the mutation proceeds.
func (s *Service) observeMaxLimit(ctx context.Context) {
	p, err := s.parameters.Get(ctx, keyMaxLimitParameter)
	if err != nil {
		s.logger.Warn("parameter lookup failed", "key", keyMaxLimitParameter, "error", err)
		return
	}
	if p.Source == lookup.SourceFallback && s.metrics != nil {
		s.metrics.IncrementLookupFallback("parameter")
	}
	s.logger.Info("parameter resolved", "key", p.Key, "value", p.Value, "source", p.Source)
}
