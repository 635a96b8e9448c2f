package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"discadian/internal/county"
	"discadian/internal/identity"
	"discadian/internal/links"
	"discadian/internal/platform/config"
	platformredis "discadian/internal/platform/redis"
	"discadian/internal/reconcile"
	reconcilemetrics "discadian/internal/reconcile/metrics"
	"discadian/internal/registry"
	"discadian/internal/registry/lookupcache"
	registrymetrics "discadian/internal/registry/metrics"
	"discadian/internal/report"
	"discadian/internal/roles"
	"discadian/internal/verification"
	"discadian/pkg/platform/filestore"
)

const reportBufferSize = 500

// app is the wired object graph shared by serve and reconcile.
type app struct {
	nations    *config.Nations
	registry   *registry.Client
	memCache   *lookupcache.Memory
	redis      *platformredis.Client
	identities *identity.Store
	counties   *county.Resolver
	verifier   *verification.Service
	scheduler  *reconcile.Scheduler
	reports    *report.Buffer

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openIdentities(logger *slog.Logger) (*identity.Store, error) {
	return identity.Open(
		filestore.New(cfg.VerificationCachePath()),
		identity.WithLogger(logger.With("component", "identity")),
	)
}

func buildApp(ctx context.Context, logger *slog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	nations, err := config.LoadNations(cfg.NationsFile)
	if err != nil {
		return nil, err
	}
	a.nations = nations

	cache, err := buildLookupCache(ctx, a)
	if err != nil {
		return nil, err
	}
	a.registry, err = registry.New(cfg.Registry.BaseURL,
		registry.WithTimeout(cfg.Registry.Timeout),
		registry.WithCache(cache),
		registry.WithBudgetOptions(
			registry.WithPauseAt(cfg.Registry.PauseAt),
			registry.WithMinSpacing(cfg.Registry.MinSpacing),
		),
		registry.WithLogger(logger.With("component", "registry")),
		registry.WithMetrics(registrymetrics.New(reg)),
	)
	if err != nil {
		return nil, err
	}

	linkValidator, err := links.New(a.registry, links.WithLogger(logger.With("component", "links")))
	if err != nil {
		return nil, err
	}

	a.identities, err = openIdentities(logger)
	if err != nil {
		return nil, err
	}

	a.counties, err = county.New(
		filestore.New(cfg.CountyTablePath()),
		a.registry,
		county.WithIdentityUpdater(a.identities),
		county.WithLogger(logger.With("component", "county")),
	)
	if err != nil {
		return nil, err
	}

	applier, err := buildApplier(logger)
	if err != nil {
		return nil, err
	}
	syncer, err := roles.NewSyncer(nations, a.counties, applier, roles.WithLogger(logger.With("component", "roles")))
	if err != nil {
		return nil, err
	}

	sink, err := buildReportSink(ctx, a, logger)
	if err != nil {
		return nil, err
	}

	engine, err := verification.NewEngine(a.registry, linkValidator, a.counties, a.identities, nations,
		verification.WithLogger(logger.With("component", "verification")),
		verification.WithReportSink(sink),
		verification.WithTracer(otel.Tracer("discadian/verification")),
	)
	if err != nil {
		return nil, err
	}
	a.verifier, err = verification.NewService(engine, a.identities, syncer, nations,
		verification.WithServiceLogger(logger.With("component", "verification")),
	)
	if err != nil {
		return nil, err
	}

	reconciler, err := reconcile.NewReconciler(a.registry, a.identities, a.counties, syncer, nations,
		reconcile.WithReconcilerLogger(logger.With("component", "reconcile")),
		reconcile.WithReportSink(sink),
	)
	if err != nil {
		return nil, err
	}
	a.scheduler, err = reconcile.NewScheduler(reconciler, a.identities, filestore.New(cfg.SchedulerStatePath()), nations.Reconcile,
		reconcile.WithLogger(logger.With("component", "scheduler")),
		reconcile.WithMetrics(reconcilemetrics.New(reg)),
		reconcile.WithSummarySink(sink),
		reconcile.WithTracer(otel.Tracer("discadian/reconcile")),
	)
	if err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

// buildLookupCache uses Redis when configured and an in-process cache
// otherwise.
func buildLookupCache(ctx context.Context, a *app) (lookupcache.Cache, error) {
	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		a.memCache = lookupcache.NewMemory()
		return a.memCache, nil
	}
	a.redis = rc
	a.closers = append(a.closers, func() { _ = rc.Close() })
	return lookupcache.NewRedis(rc.Client, lookupcache.DefaultRedisPrefix)
}

func buildApplier(logger *slog.Logger) (roles.Applier, error) {
	if cfg.Discord.BotToken == "" {
		logger.Warn("no discord bot token configured, role changes are kept in memory")
		return roles.NewMemoryApplier(), nil
	}
	return roles.NewDiscordApplier(cfg.Discord.BaseURL, cfg.Discord.BotToken, cfg.Discord.Timeout,
		roles.WithDiscordLogger(logger.With("component", "discord")),
	)
}

func buildReportSink(ctx context.Context, a *app, logger *slog.Logger) (report.Sink, error) {
	a.reports = report.NewBuffer(reportBufferSize)
	sinks := report.Fanout{report.NewLogSink(logger.With("component", "report")), a.reports}
	if len(cfg.Kafka.Brokers) == 0 {
		return sinks, nil
	}
	kafka, err := report.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic,
		report.WithKafkaLogger(logger.With("component", "kafka")),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka report sink: %w", err)
	}
	a.closers = append(a.closers, kafka.Close)
	return append(sinks, kafka), nil
}
