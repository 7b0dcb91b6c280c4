package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	conjuntohandler "victus/internal/conjunto/handler"
	conjuntometrics "victus/internal/conjunto/metrics"
	"victus/internal/conjunto/service"
	"victus/internal/conjunto/store"
	"victus/internal/events"
	"victus/internal/lookup"
	"victus/internal/platform/config"
	"victus/internal/platform/httpserver"
	"victus/internal/platform/logger"
	"victus/internal/platform/middleware"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal services
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		conjuntos service.ConjuntoStore
		viviendas service.ViviendaStore
		cities    service.CityStore
		admins    service.AdministratorStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("connecting to postgres failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgresConjuntoStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("applying schema failed", "error", err)
			os.Exit(1)
		}
		conjuntos = pg
		viviendas = store.NewPostgresViviendaStore(pool)
		cities = store.NewPostgresCityStore(pool)
		admins = store.NewPostgresAdministratorStore(pool)
		log.Info("using postgres stores")
	} else {
		cityStore := store.NewInMemoryCityStore()
		conjuntos = store.NewInMemoryConjuntoStore(cityStore)
		viviendas = store.NewInMemoryViviendaStore()
		cities = cityStore
		admins = store.NewInMemoryAdministratorStore()
		log.Warn("VICTUS_DB_URL not set, using in-memory stores")
	}

	var messages service.MessageResolver = lookup.NewOfflineMessageClient()
	if cfg.MessageServiceURL != "" {
		messages = lookup.NewMessageClient(cfg.MessageServiceURL,
			lookup.WithMessageLogger(log),
			lookup.WithMessageTimeout(cfg.LookupTimeout),
		)
	}
	var parameters service.ParameterResolver = lookup.NewOfflineParameterClient()
	if cfg.ParameterServiceURL != "" {
		parameters = lookup.NewParameterClient(cfg.ParameterServiceURL,
			lookup.WithParameterLogger(log),
			lookup.WithParameterTimeout(cfg.LookupTimeout),
		)
	}

	m := conjuntometrics.New()

	broadcaster := events.NewBroadcaster(
		events.WithLogger(log),
		events.WithBuffer(cfg.EventBuffer),
		events.WithDropHook(m.IncrementEventsDropped),
	)
	defer broadcaster.Close()

	svc := service.New(conjuntos, viviendas, cities, admins,
		service.WithLogger(log),
		service.WithMessageResolver(messages),
		service.WithParameterResolver(parameters),
		service.WithPublisher(broadcaster),
		service.WithMetrics(m),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.ContentTypeJSON)
	conjuntohandler.New(svc, broadcaster, log).Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("starting victus", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("victus stopped")
}
