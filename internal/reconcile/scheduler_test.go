package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"discadian/internal/identity"
	"discadian/internal/platform/config"
	"discadian/internal/reconcile/metrics"
	"discadian/internal/report"
	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/clock"
	"discadian/pkg/platform/filestore"
)

type fakeReconciler struct {
	mu   sync.Mutex
	seen []string
	fn   func(ctx context.Context, rec identity.Identity) (Change, error)
}

func (f *fakeReconciler) Reconcile(ctx context.Context, rec identity.Identity) (Change, error) {
	f.mu.Lock()
	f.seen = append(f.seen, rec.PlayerUUID)
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return ChangeNone, nil
	}
	return fn(ctx, rec)
}

func (f *fakeReconciler) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

type staticLister []identity.Identity

func (l staticLister) List() []identity.Identity { return l }

func people(n int) staticLister {
	out := make(staticLister, n)
	for i := range out {
		out[i] = identity.Identity{PlayerUUID: fmt.Sprintf("uuid-%d", i), DiscordID: fmt.Sprint(i), IGN: fmt.Sprintf("p%d", i)}
	}
	return out
}

type SchedulerSuite struct {
	suite.Suite
	ctx        context.Context
	clock      *clock.MockClock
	doc        *filestore.Document
	reconciler *fakeReconciler
	reports    *report.Buffer
	metrics    *metrics.Metrics
	cfg        config.Reconcile
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.doc = filestore.New(filepath.Join(s.T().TempDir(), "reconcile_state.json"))
	s.reconciler = &fakeReconciler{}
	s.reports = report.NewBuffer(10)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.cfg = config.Reconcile{
		Enabled:     true,
		Interval:    config.Duration(24 * time.Hour),
		CheckEvery:  config.Duration(time.Hour),
		BatchSize:   2,
		UserDelay:   config.Duration(2 * time.Second),
		BatchDelay:  config.Duration(30 * time.Second),
		CallTimeout: config.Duration(30 * time.Second),
		SendSummary: true,
	}
}

func (s *SchedulerSuite) newScheduler(list IdentityLister) *Scheduler {
	sched, err := NewScheduler(s.reconciler, list, s.doc, s.cfg,
		WithClock(s.clock),
		WithMetrics(s.metrics),
		WithSummarySink(s.reports),
	)
	s.Require().NoError(err)
	return sched
}

func (s *SchedulerSuite) TestRunPacesBatches() {
	sched := s.newScheduler(people(5))

	sum, err := sched.RunOnce(s.ctx)
	s.Require().NoError(err)

	s.Equal(5, sum.TotalUsers)
	s.Equal(3, sum.TotalBatches)
	s.Equal(5, sum.Processed)
	s.Equal([]time.Duration{2 * time.Second, 30 * time.Second, 2 * time.Second, 30 * time.Second}, s.clock.Sleeps())
	s.Equal(64*time.Second, sum.Duration)
	s.Len(s.reconciler.calls(), 5)
}

func (s *SchedulerSuite) TestFailuresAreIsolated() {
	s.reconciler.fn = func(_ context.Context, rec identity.Identity) (Change, error) {
		switch rec.PlayerUUID {
		case "uuid-1":
			return ChangeNone, dErrors.New(dErrors.CodeUpstreamFailure, "API error 500")
		case "uuid-2":
			return ChangeUpdated, nil
		case "uuid-3":
			return ChangeDeparted, nil
		}
		return ChangeNone, nil
	}
	sched := s.newScheduler(people(5))

	sum, err := sched.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, sum.Processed)
	s.Equal(1, sum.Failed)
	s.Equal(1, sum.Updated)
	s.Equal(1, sum.Departed)
	s.Len(s.reconciler.calls(), 5)

	st := sched.Status()
	s.False(st.Running)
	s.Equal(1, st.Stats.TotalRuns)
	s.Equal(1, st.Stats.LastRunFailures)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Identities.WithLabelValues("failed")))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Runs.WithLabelValues("completed")))
}

func (s *SchedulerSuite) TestSummaryReported() {
	sched := s.newScheduler(people(1))
	_, err := sched.RunOnce(s.ctx)
	s.Require().NoError(err)

	events := s.reports.Recent(0)
	s.Require().Len(events, 1)
	s.Equal(report.KindRunSummary, events[0].Kind)
	s.Equal("1", events[0].Attributes["processed"])
	s.Equal("1", events[0].Attributes["total_runs"])
}

func (s *SchedulerSuite) TestLastRunSurvivesRestart() {
	sched := s.newScheduler(people(1))
	s.True(sched.due())
	_, err := sched.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.False(sched.due())

	restarted := s.newScheduler(people(1))
	st := restarted.Status()
	s.Require().NotNil(st.LastRunAt)
	s.True(st.LastRunAt.Equal(s.clock.Now()))
	s.Zero(st.Stats.TotalRuns)
	s.False(restarted.due())

	s.clock.Advance(24 * time.Hour)
	s.True(restarted.due())

	restarted.Disable()
	s.False(restarted.due())
	restarted.Enable()
	s.True(restarted.due())
}

func (s *SchedulerSuite) TestCancellationStopsAtIdentityBoundary() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.reconciler.fn = func(_ context.Context, rec identity.Identity) (Change, error) {
		if rec.PlayerUUID == "uuid-1" {
			cancel()
		}
		return ChangeNone, nil
	}
	sched := s.newScheduler(people(6))

	sum, err := sched.RunOnce(ctx)
	s.ErrorIs(err, context.Canceled)
	s.Equal(2, sum.Processed)
	s.Len(s.reconciler.calls(), 2)

	st := sched.Status()
	s.False(st.Running)
	s.Nil(st.LastRunAt)
	s.Zero(st.Stats.TotalRuns)
	s.Empty(s.reports.Recent(0))
}

func (s *SchedulerSuite) TestSingleActiveRun() {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	s.reconciler.fn = func(ctx context.Context, _ identity.Identity) (Change, error) {
		entered <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return ChangeNone, nil
	}
	sched := s.newScheduler(people(1))

	s.Require().NoError(sched.TriggerNow())
	<-entered
	s.True(sched.Status().Running)
	s.False(sched.due())

	_, err := sched.RunOnce(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.True(dErrors.HasCode(sched.TriggerNow(), dErrors.CodeConflict))

	close(release)
	s.Eventually(func() bool { return sched.Status().Stats.TotalRuns == 1 }, time.Second, 5*time.Millisecond)
	sched.Stop()
}

func (s *SchedulerSuite) TestStartRunsWhenDue() {
	sched := s.newScheduler(people(2))

	s.Require().NoError(sched.Start(s.ctx))
	s.True(dErrors.HasCode(sched.Start(s.ctx), dErrors.CodeConflict))
	s.Eventually(func() bool { return sched.Status().Stats.TotalRuns == 1 }, time.Second, 5*time.Millisecond)
	s.True(sched.Status().Started)

	sched.Stop()
	s.False(sched.Status().Started)
	s.Require().NoError(sched.Start(s.ctx))
	sched.Stop()
}

func (s *SchedulerSuite) TestTickLoopWaitsForInterval() {
	s.cfg.Interval = config.Duration(6 * time.Hour)
	sched := s.newScheduler(people(2))

	s.Require().NoError(sched.Start(s.ctx))
	defer sched.Stop()
	s.Eventually(func() bool { return sched.Status().Stats.TotalRuns == 1 }, time.Second, 5*time.Millisecond)
	s.Equal(1, s.clock.Tickers())

	s.clock.Advance(time.Hour)
	s.Never(func() bool { return sched.Status().Stats.TotalRuns > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	s.clock.Advance(6 * time.Hour)
	s.Eventually(func() bool { return sched.Status().Stats.TotalRuns == 2 }, time.Second, 5*time.Millisecond)
	s.Len(s.reconciler.calls(), 4)
}

func (s *SchedulerSuite) TestSkippedCountsAsProcessed() {
	s.reconciler.fn = func(context.Context, identity.Identity) (Change, error) {
		return ChangeSkipped, nil
	}
	sched := s.newScheduler(people(2))

	sum, err := sched.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, sum.Processed)
	s.Zero(sum.Updated)
	s.Zero(sum.Failed)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Identities.WithLabelValues("skipped")))
}

func (s *SchedulerSuite) TestEmptyCacheStillCompletes() {
	sched := s.newScheduler(staticLister{})
	sum, err := sched.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(sum.TotalUsers)
	s.Equal(1, sched.Status().Stats.TotalRuns)
}

func TestNewSchedulerRequiresCollaborators(t *testing.T) {
	_, err := NewScheduler(nil, staticLister{}, filestore.New(filepath.Join(t.TempDir(), "s.json")), config.Reconcile{})
	assert.Error(t, err)
	_, err = NewScheduler(&fakeReconciler{}, staticLister{}, nil, config.Reconcile{})
	assert.Error(t, err)
}

type brokenPersister struct{}

func (brokenPersister) Load(any) (bool, error) { return false, errors.New("unreadable") }
func (brokenPersister) Save(any) error         { return nil }

func TestNewSchedulerLoadFailure(t *testing.T) {
	_, err := NewScheduler(&fakeReconciler{}, staticLister{}, brokenPersister{}, config.Reconcile{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodePersistenceFailure))
}

func TestStatsRollingAverage(t *testing.T) {
	var st Stats
	st.record(10*time.Second, 1, 0, 0)
	assert.Equal(t, 10*time.Second, st.AverageDuration)
	st.record(20*time.Second, 1, 0, 0)
	assert.Equal(t, 15*time.Second, st.AverageDuration)
	st.record(30*time.Second, 2, 1, 1)
	assert.Equal(t, 20*time.Second, st.AverageDuration)
	assert.Equal(t, 3, st.TotalRuns)
	assert.Equal(t, 30*time.Second, st.LastRunDuration)
	assert.Equal(t, 1, st.LastRunFailures)
}

func TestBatches(t *testing.T) {
	got := batches([]int{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)
	assert.Empty(t, batches([]int{}, 10))
}
