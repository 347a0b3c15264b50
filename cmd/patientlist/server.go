package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/patientlist/internal/config"
	"github.com/ehr/patientlist/internal/domain/patient"
	"github.com/ehr/patientlist/internal/platform/db"
	"github.com/ehr/patientlist/internal/platform/fhir"
	"github.com/ehr/patientlist/internal/platform/metrics"
	"github.com/ehr/patientlist/internal/platform/middleware"
)

type serverDeps struct {
	cfg     *config.Config
	logger  zerolog.Logger
	repo    *patient.MemoryRepo
	metrics *metrics.Metrics
	// pinger backs /health/db; nil when the source has no database.
	pinger db.Pinger
}

func newServer(d serverDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = fhir.HTTPErrorHandler(d.logger)

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(d.logger))
	e.Use(middleware.Recovery(d.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(d.cfg.RequestTimeout()))

	lo, hi := d.cfg.LatencyRange()
	fhirGroup := e.Group("/fhir",
		fhir.CORSMiddleware(fhir.CORSConfig{AllowOrigins: d.cfg.CORSOrigins, MaxAge: 3600}),
		middleware.SimulatedLatency(lo, hi),
	)

	svc := patient.NewService(d.repo, patient.WithMetrics(d.metrics))
	patient.NewHandler(svc).RegisterRoutes(fhirGroup)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"source":  d.cfg.RecordSource,
			"records": d.repo.Len(),
		})
	})
	if d.pinger != nil {
		e.GET("/health/db", db.HealthHandler(d.pinger))
	}
	if d.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.metrics.Handler()))
	}

	return e
}

func runServer(parent context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("source", cfg.RecordSource).Msg("failed to open record source")
		return err
	}
	defer st.close()

	repo, err := patient.LoadRepo(ctx, st.source)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load patient records")
		return err
	}
	if repo.Len() == 0 {
		logger.Warn().Str("source", cfg.RecordSource).Msg("record source is empty, run `patientlist seed`")
	}
	logger.Info().Str("source", cfg.RecordSource).Int("records", repo.Len()).Msg("patient records loaded")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	m.SetRecordsLoaded(repo.Len())

	e := newServer(serverDeps{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		metrics: m,
		pinger:  st.pinger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
