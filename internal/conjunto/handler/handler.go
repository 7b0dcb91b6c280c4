package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	"victus/internal/conjunto/service"
	"victus/internal/platform/middleware"
	dErrors "victus/pkg/domain-errors"
	"victus/pkg/platform/httputil"
	"victus/pkg/requestcontext"
)

const streamHeartbeat = 15 * time.Second

// Service defines the conjunto operations the handler exposes.
type Service interface {
	Create(ctx context.Context, req *models.CreateConjuntoRequest) (*models.ConjuntoView, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateConjuntoRequest) (*models.ConjuntoView, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ConjuntoView, error)
	List(ctx context.Context, filter service.ListFilter) ([]*models.ConjuntoView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateVivienda(ctx context.Context, conjuntoID uuid.UUID, req *models.CreateViviendaRequest) (*models.Vivienda, error)
	ListViviendas(ctx context.Context, conjuntoID uuid.UUID, page, size int) (*models.ViviendaPage, error)
}

// Broadcaster is the subscription side of the domain-event channel.
type Broadcaster interface {
	Subscribe() (<-chan models.Event, func())
}

// Handler wires conjunto endpoints to the service and the event stream.
type Handler struct {
	service Service
	events  Broadcaster
	logger  *slog.Logger
}

// New constructs a conjunto handler with its dependencies.
func New(service Service, events Broadcaster, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		events:  events,
		logger:  logger,
	}
}

// Register mounts conjunto endpoints on the router. The stream route stays
// outside the timeout group because it holds its connection open.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/conjuntos", func(r chi.Router) {
		r.Get("/stream", h.HandleStream)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Post("/", h.HandleCreate)
			r.Get("/", h.HandleList)
			r.Get("/{id}", h.HandleGet)
			r.Put("/{id}", h.HandleUpdate)
			r.Delete("/{id}", h.HandleDelete)
			r.Post("/{id}/viviendas", h.HandleCreateVivienda)
			r.Get("/{id}/viviendas", h.HandleListViviendas)
		})
	})
}

// HandleCreate handles POST /api/v1/conjuntos.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := httputil.Decode[models.CreateConjuntoRequest](r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	view, err := h.service.Create(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "conjunto creation rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "conjunto created",
		"request_id", requestID,
		"id", view.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleList handles GET /api/v1/conjuntos with optional ciudadId,
// departamentoId, and nombre query parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := service.ListFilter{Name: q.Get("nombre")}
	if raw := q.Get("ciudadId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, r, dErrors.New(dErrors.CodeValidation,
				"El parámetro ciudadId debe ser un UUID válido."))
			return
		}
		filter.CityID = id
	}
	if raw := q.Get("departamentoId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, r, dErrors.New(dErrors.CodeValidation,
				"El parámetro departamentoId debe ser un UUID válido."))
			return
		}
		filter.DepartmentID = id
	}

	views, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "conjunto listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}
	if views == nil {
		views = []*models.ConjuntoView{}
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /api/v1/conjuntos/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleUpdate handles PUT /api/v1/conjuntos/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, err := httputil.Decode[models.UpdateConjuntoRequest](r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	view, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.logger.WarnContext(ctx, "conjunto update rejected",
			"request_id", requestcontext.RequestID(ctx),
			"id", id,
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /api/v1/conjuntos/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "conjunto deletion rejected",
			"request_id", requestcontext.RequestID(ctx),
			"id", id,
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// HandleCreateVivienda handles POST /api/v1/conjuntos/{id}/viviendas.
func (h *Handler) HandleCreateVivienda(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conjuntoID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, err := httputil.Decode[models.CreateViviendaRequest](r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	v, err := h.service.CreateVivienda(ctx, conjuntoID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "vivienda registration rejected",
			"request_id", requestcontext.RequestID(ctx),
			"conjunto_id", conjuntoID,
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

// HandleListViviendas handles GET /api/v1/conjuntos/{id}/viviendas with
// optional page and size query parameters (zero-based page).
func (h *Handler) HandleListViviendas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conjuntoID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	page, ok := h.queryInt(w, r, "page", 0)
	if !ok {
		return
	}
	size, ok := h.queryInt(w, r, "size", 0)
	if !ok {
		return
	}
	result, err := h.service.ListViviendas(ctx, conjuntoID, page, size)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleStream handles GET /api/v1/conjuntos/stream: a server-sent-events
// feed of domain events, keyed by event type, starting with a replay of the
// most recent event. The connection stays open until the client leaves.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeInternal,
			"La transmisión de eventos no está disponible."))
		return
	}

	ch, cancel := h.events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			// Comment frame: keeps proxies from reaping idle connections.
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.ErrorContext(ctx, "event serialization failed",
					"tipo", event.Type, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// queryInt parses an optional non-negative integer query parameter, writing
// the validation error itself on bad input.
func (h *Handler) queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("El parámetro %s debe ser un entero no negativo.", name)))
		return 0, false
	}
	return n, true
}

// pathID parses the {id} path parameter, writing the validation error
// itself when the value is not a UUID.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeValidation,
			"El identificador debe ser un UUID válido."))
		return uuid.Nil, false
	}
	return id, true
}
