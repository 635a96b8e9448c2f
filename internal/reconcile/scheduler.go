package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"discadian/internal/identity"
	"discadian/internal/platform/config"
	"discadian/internal/reconcile/metrics"
	"discadian/internal/report"
	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/clock"
)

// IdentityReconciler reconciles a single identity.
type IdentityReconciler interface {
	Reconcile(ctx context.Context, rec identity.Identity) (Change, error)
}

// IdentityLister snapshots the identities a run walks.
type IdentityLister interface {
	List() []identity.Identity
}

// Scheduler runs reconciliation when enabled and the interval has elapsed
// since the last completed run. At most one run is active at a time.
type Scheduler struct {
	reconciler IdentityReconciler
	identities IdentityLister
	persister  Persister
	cfg        config.Reconcile
	reports    report.Sink
	metrics    *metrics.Metrics
	clock      clock.Clock
	tracer     trace.Tracer
	logger     *slog.Logger

	mu         sync.Mutex
	enabled    bool
	running    bool
	progress   Progress
	stats      Stats
	lastRunAt  *time.Time
	stopLoop   context.CancelFunc
	cancelRun  context.CancelFunc
	background sync.WaitGroup
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithSummarySink sets where run summaries go when enabled in config.
func WithSummarySink(sink report.Sink) Option {
	return func(s *Scheduler) {
		s.reports = sink
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Scheduler) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewScheduler loads the last-run timestamp through p. The scheduler starts
// enabled when cfg.Enabled is set.
func NewScheduler(reconciler IdentityReconciler, identities IdentityLister, p Persister, cfg config.Reconcile, opts ...Option) (*Scheduler, error) {
	switch {
	case reconciler == nil:
		return nil, errors.New("reconciler is required")
	case identities == nil:
		return nil, errors.New("identity lister is required")
	case p == nil:
		return nil, errors.New("persister is required")
	}
	s := &Scheduler{
		reconciler: reconciler,
		identities: identities,
		persister:  p,
		cfg:        cfg,
		enabled:    cfg.Enabled,
		clock:      clock.New(),
		tracer:     otel.Tracer("discadian/reconcile"),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	var state persistedState
	if _, err := p.Load(&state); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistenceFailure, "load reconciliation state")
	}
	s.lastRunAt = state.LastRunAt
	return s, nil
}

// Start launches the check loop. It returns a conflict error if the loop is
// already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopLoop != nil {
		return dErrors.New(dErrors.CodeConflict, "scheduler already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.stopLoop = cancel
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("reconciliation loop stopped", "error", err)
		}
	}()
	s.logger.Info("reconciliation scheduler started",
		"interval", s.cfg.Interval.Std(),
		"check_every", s.cfg.CheckEvery.Std(),
	)
	return nil
}

// Stop cancels the loop and any active run, then waits for both to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopLoop != nil {
		s.stopLoop()
		s.stopLoop = nil
	}
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.mu.Unlock()
	s.background.Wait()
	s.logger.Info("reconciliation scheduler stopped")
}

// Run checks every CheckEvery whether a run is due until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	every := s.cfg.CheckEvery.Std()
	if every <= 0 {
		every = time.Hour
	}
	ticker := s.clock.NewTicker(every)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ticker.C():
			s.tick(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Scheduler) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
}

// Disable prevents future runs. An active run is not interrupted.
func (s *Scheduler) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.due() {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil && !dErrors.HasCode(err, dErrors.CodeConflict) {
		s.logger.WarnContext(ctx, "reconciliation run did not complete", "error", err)
	}
}

func (s *Scheduler) due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.running {
		return false
	}
	return s.lastRunAt == nil || s.clock.Now().Sub(*s.lastRunAt) >= s.cfg.Interval.Std()
}

// TriggerNow starts a run in the background regardless of the interval or
// the enabled flag.
func (s *Scheduler) TriggerNow() error {
	runCtx, err := s.begin(context.Background())
	if err != nil {
		return err
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if _, err := s.execute(runCtx); err != nil {
			s.logger.WarnContext(runCtx, "triggered reconciliation run did not complete", "error", err)
		}
	}()
	return nil
}

// RunOnce runs a full pass synchronously. It returns a conflict error if a run
// is already active and ctx's error if cancelled part way.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	runCtx, err := s.begin(ctx)
	if err != nil {
		return Summary{}, err
	}
	return s.execute(runCtx)
}

func (s *Scheduler) begin(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, dErrors.New(dErrors.CodeConflict, "reconciliation already in progress")
	}
	s.running = true
	s.progress = Progress{}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel
	if s.metrics != nil {
		s.metrics.SetActive(true)
	}
	return runCtx, nil
}

func (s *Scheduler) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
	s.running = false
	if s.metrics != nil {
		s.metrics.SetActive(false)
	}
}

func (s *Scheduler) execute(ctx context.Context) (Summary, error) {
	defer s.finish()
	ctx, span := s.tracer.Start(ctx, "reconcile.Run")
	defer span.End()

	started := s.clock.Now()
	all := s.identities.List()
	groups := batches(all, s.cfg.BatchSize)
	s.update(func(p *Progress) {
		p.TotalUsers = len(all)
		p.TotalBatches = len(groups)
	})
	s.logger.InfoContext(ctx, "reconciliation run started",
		"users", len(all),
		"batches", len(groups),
	)

	if err := s.walk(ctx, groups); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if s.metrics != nil {
			s.metrics.ObserveRun("cancelled", 0)
		}
		s.logger.WarnContext(ctx, "reconciliation run cancelled",
			"processed", s.snapshot().Processed,
			"error", err,
		)
		return s.summary(started, elapsed(s.clock, started), s.snapshotStats().TotalRuns), err
	}

	duration := elapsed(s.clock, started)
	finished := s.clock.Now()
	s.mu.Lock()
	p := s.progress
	s.stats.record(duration, p.Processed, p.Updated, p.Failed)
	s.lastRunAt = &finished
	totalRuns := s.stats.TotalRuns
	s.mu.Unlock()

	if err := s.persister.Save(persistedState{LastRunAt: &finished}); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist reconciliation state", "error", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveRun("completed", duration.Seconds())
	}
	span.SetAttributes(
		attribute.Int("reconcile.users", p.TotalUsers),
		attribute.Int("reconcile.updated", p.Updated),
		attribute.Int("reconcile.failed", p.Failed),
	)

	sum := s.summary(started, duration, totalRuns)
	s.logger.InfoContext(ctx, "reconciliation run completed",
		"processed", p.Processed,
		"updated", p.Updated,
		"departed", p.Departed,
		"failed", p.Failed,
		"duration", duration,
	)
	if s.cfg.SendSummary {
		s.publishSummary(ctx, sum)
	}
	return sum, nil
}

// walk processes groups in order, pausing between users and between batches.
// Cancellation is checked before every identity.
func (s *Scheduler) walk(ctx context.Context, groups [][]identity.Identity) error {
	for i, batch := range groups {
		s.update(func(p *Progress) { p.CurrentBatch = i + 1 })
		s.logger.DebugContext(ctx, "processing batch",
			"batch", i+1,
			"batches", len(groups),
			"size", len(batch),
		)
		for j, rec := range batch {
			if j > 0 {
				if err := s.clock.Sleep(ctx, s.cfg.UserDelay.Std()); err != nil {
					return err
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			s.reconcileOne(ctx, rec)
		}
		if i < len(groups)-1 {
			if err := s.clock.Sleep(ctx, s.cfg.BatchDelay.Std()); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

func (s *Scheduler) reconcileOne(ctx context.Context, rec identity.Identity) {
	callCtx := ctx
	if d := s.cfg.CallTimeout.Std(); d > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	change, err := s.reconciler.Reconcile(callCtx, rec)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.update(func(p *Progress) { p.Failed++ })
		s.observe("failed")
		s.logger.WarnContext(ctx, "failed to reconcile identity",
			"player_uuid", rec.PlayerUUID,
			"ign", rec.IGN,
			"error", err,
		)
		return
	}

	s.update(func(p *Progress) {
		p.Processed++
		switch change {
		case ChangeUpdated:
			p.Updated++
		case ChangeDeparted:
			p.Departed++
		}
	})
	s.observe(string(change))
}

func (s *Scheduler) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementIdentity(outcome)
	}
}

func (s *Scheduler) update(fn func(p *Progress)) {
	s.mu.Lock()
	fn(&s.progress)
	s.mu.Unlock()
}

func (s *Scheduler) snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Scheduler) snapshotStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) summary(started time.Time, d time.Duration, totalRuns int) Summary {
	return Summary{
		Progress:  s.snapshot(),
		StartedAt: started,
		Duration:  d,
		TotalRuns: totalRuns,
		NextRunAt: started.Add(d).Add(s.cfg.Interval.Std()),
	}
}

func (s *Scheduler) publishSummary(ctx context.Context, sum Summary) {
	report.Emit(ctx, s.logger, s.reports, report.Event{
		Kind: report.KindRunSummary,
		Message: fmt.Sprintf("Periodic verification: %d processed, %d updated, %d failed in %.1fs",
			sum.Processed, sum.Updated, sum.Failed, sum.Duration.Seconds()),
		Attributes: map[string]string{
			"total_users": strconv.Itoa(sum.TotalUsers),
			"processed":   strconv.Itoa(sum.Processed),
			"updated":     strconv.Itoa(sum.Updated),
			"departed":    strconv.Itoa(sum.Departed),
			"failed":      strconv.Itoa(sum.Failed),
			"duration":    sum.Duration.String(),
			"total_runs":  strconv.Itoa(sum.TotalRuns),
			"next_run_at": sum.NextRunAt.UTC().Format(time.RFC3339),
		},
		OccurredAt: s.clock.Now(),
	})
}

// Status reports whether a run is active, the live counters and the
// accumulated statistics.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:  s.running,
		Enabled:  s.enabled,
		Started:  s.stopLoop != nil,
		Progress: s.progress,
		Stats:    s.stats,
	}
	if s.lastRunAt != nil {
		last := *s.lastRunAt
		next := last.Add(s.cfg.Interval.Std())
		st.LastRunAt, st.NextRunAt = &last, &next
	}
	return st
}
