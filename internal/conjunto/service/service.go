package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	conjuntometrics "victus/internal/conjunto/metrics"
	"victus/internal/conjunto/models"
	"victus/internal/lookup"
	dErrors "victus/pkg/domain-errors"
	"victus/pkg/requestcontext"
)

// Message catalog keys the orchestrators resolve wording from. The keys are
// part of the contract with the message-service catalog.
const (
	keyRequiredUUID   = "validation.required.uuid"
	keyPhoneFormat    = "validation.conjunto.telefono.format"
	keyPhoneDuplicate = "domain.conjunto.telefono.duplicated"
	keyNameDuplicate  = "domain.conjunto.nombre.duplicated"
	keyGeneralError   = "domain.general.error"

	keyMaxLimitParameter = "conjunto.max.limit"
)

// ConjuntoStore is the persistence port for conjuntos. Find operations
// signal the zero case with sentinel.ErrNotFound (single row) or an empty
// slice (multi row); Save signals a uniqueness violation with
// sentinel.ErrConflict.
type ConjuntoStore interface {
	Save(ctx context.Context, c *models.Conjunto) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Conjunto, error)
	FindAll(ctx context.Context) ([]*models.Conjunto, error)
	FindByCityAndName(ctx context.Context, cityID uuid.UUID, name string) (*models.Conjunto, error)
	FindAllByPhone(ctx context.Context, phone string) ([]*models.Conjunto, error)
	FindByCityID(ctx context.Context, cityID uuid.UUID) ([]*models.Conjunto, error)
	FindByDepartmentID(ctx context.Context, departmentID uuid.UUID) ([]*models.Conjunto, error)
	FindByCityAndDepartmentID(ctx context.Context, cityID, departmentID uuid.UUID) ([]*models.Conjunto, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// ViviendaStore is the persistence port for viviendas. FindByConjuntoID
// pages by offset/limit and also reports the total match count; Save signals
// a per-conjunto numero collision with sentinel.ErrConflict.
type ViviendaStore interface {
	Save(ctx context.Context, v *models.Vivienda) error
	FindByConjuntoAndNumero(ctx context.Context, conjuntoID uuid.UUID, numero string) (*models.Vivienda, error)
	FindByConjuntoID(ctx context.Context, conjuntoID uuid.UUID, offset, limit int) ([]*models.Vivienda, int, error)
	DeleteByConjuntoID(ctx context.Context, conjuntoID uuid.UUID) error
}

// CityStore resolves dependent cities.
type CityStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.City, error)
}

// AdministratorStore resolves dependent administrators.
type AdministratorStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Administrator, error)
}

// MessageResolver resolves user-facing and technical texts by key,
// degrading to static fallbacks per the lookup contract.
type MessageResolver interface {
	Resolve(ctx context.Context, key string) (lookup.Resolution, error)
}

// ParameterResolver resolves configuration parameters by key.
type ParameterResolver interface {
	Get(ctx context.Context, key string) (lookup.Parameter, error)
}

// EventPublisher is the best-effort broadcast port. Publish never blocks
// and never reports failure.
type EventPublisher interface {
	Publish(event models.Event)
}

// Service orchestrates the conjunto lifecycle: dependent-entity validation,
// duplicate detection, fallback message resolution, persistence, and event
// notification.
type Service struct {
	conjuntos  ConjuntoStore
	viviendas  ViviendaStore
	cities     CityStore
	admins     AdministratorStore
	messages   MessageResolver
	parameters ParameterResolver
	publisher  EventPublisher
	logger     *slog.Logger
	metrics    *conjuntometrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMessageResolver replaces the default offline message client.
func WithMessageResolver(resolver MessageResolver) Option {
	return func(s *Service) { s.messages = resolver }
}

// WithParameterResolver replaces the default offline parameter client.
func WithParameterResolver(resolver ParameterResolver) Option {
	return func(s *Service) { s.parameters = resolver }
}

// WithPublisher sets the domain-event broadcast channel.
func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *conjuntometrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service. The lookup clients default to their offline
// variants so an unconfigured catalog degrades rather than failing wiring.
func New(conjuntos ConjuntoStore, viviendas ViviendaStore, cities CityStore, admins AdministratorStore, opts ...Option) *Service {
	s := &Service{
		conjuntos:  conjuntos,
		viviendas:  viviendas,
		cities:     cities,
		admins:     admins,
		messages:   lookup.NewOfflineMessageClient(),
		parameters: lookup.NewOfflineParameterClient(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolvedError builds a coded error whose wording comes from the message
// catalog. Catalog availability only changes the wording, never the code.
func (s *Service) resolvedError(ctx context.Context, code dErrors.Code, key string) *dErrors.Error {
	res, err := s.messages.Resolve(ctx, key)
	if err != nil {
		// Resolve only errors for the caller-bug class; the outcome still
		// must not change, so ship the static fallback wording.
		s.logger.Error("message resolution failed", "key", key, "error", err)
		res = lookup.FallbackResolution()
	}
	if res.Source == lookup.SourceFallback && s.metrics != nil {
		s.metrics.IncrementLookupFallback("message")
	}
	s.logger.Warn("domain rule rejected request",
		"key", key, "technical", res.Technical, "source", res.Source,
		"request_id", requestcontext.RequestID(ctx))
	return dErrors.NewWithTechnical(code, res.Client, res.Technical)
}

// classify translates an unclassified failure into an internal-coded error
// with catalog-resolved wording. An error that already carries a coded
// user-facing message passes through unchanged.
func (s *Service) classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.AsError(err); ok {
		return err
	}
	s.logger.Error("unexpected failure", "error", err,
		"request_id", requestcontext.RequestID(ctx))
	res, rerr := s.messages.Resolve(ctx, keyGeneralError)
	if rerr != nil {
		res = lookup.FallbackResolution()
	}
	return &dErrors.Error{
		Code:      dErrors.CodeInternal,
		Message:   res.Client,
		Technical: err.Error(),
		Err:       err,
	}
}

// publish emits a domain event. Best effort: a nil publisher or a full
// subscriber is never the caller's problem.
func (s *Service) publish(ctx context.Context, eventType models.EventType, view *models.ConjuntoView) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(models.NewEvent(eventType, view, requestcontext.Now(ctx)))
}

// viewOf builds the outbound representation, resolving city and department
// display names. Resolution failures degrade to empty display names.
func (s *Service) viewOf(ctx context.Context, c *models.Conjunto) *models.ConjuntoView {
	city, err := s.cities.FindByID(ctx, c.CityID)
	if err != nil {
		s.logger.Warn("city lookup for view failed", "ciudad_id", c.CityID, "error", err)
		city = nil
	}
	return models.NewConjuntoView(c, city)
}
