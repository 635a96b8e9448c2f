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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"discadian/internal/admin"
	jwttoken "discadian/internal/jwt_token"
	"discadian/internal/platform/httpserver"
	"discadian/internal/platform/metrics"
	"discadian/internal/platform/otel"
	"discadian/pkg/platform/httputil"
)

const (
	shutdownTimeout    = 10 * time.Second
	cachePurgeInterval = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API and the reconciliation scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	shutdownTracing, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	a, err := buildApp(ctx, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	adminHandler := admin.New(a.verifier, a.scheduler, a.counties, a.identities, a.reports,
		jwttoken.NewMiddlewareAdapter(jwtService),
		log.With("component", "admin"),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.New(prometheus.DefaultRegisterer).Middleware)
	r.Get("/health", a.health)
	r.Handle("/metrics", promhttp.Handler())
	adminHandler.Register(r)

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting discadian", "addr", cfg.Addr, "nations", len(a.nations.Nations))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.scheduler.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if a.memCache != nil {
		g.Go(func() error {
			purgeLookupCache(gctx, a)
			return nil
		})
	}

	if err := a.scheduler.Start(gctx); err != nil {
		return err
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("discadian stopped")
	return nil
}

func purgeLookupCache(ctx context.Context, a *app) {
	ticker := time.NewTicker(cachePurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.memCache.Purge(); n > 0 {
				log.Debug("purged expired registry lookups", "entries", n)
			}
		}
	}
}

func (a *app) health(w http.ResponseWriter, r *http.Request) {
	if a.redis != nil {
		if err := a.redis.Health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "dependency", "redis", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": "unreachable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
