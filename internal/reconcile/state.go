package reconcile

import (
	"time"

	"discadian/pkg/platform/clock"
)

// Persister loads and saves the run state document.
type Persister interface {
	Load(v any) (bool, error)
	Save(v any) error
}

// persistedState is what survives a restart.
type persistedState struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// Stats accumulates across completed runs in this process.
type Stats struct {
	TotalRuns       int           `json:"total_runs"`
	LastRunDuration time.Duration `json:"last_run_duration"`
	LastRunUsers    int           `json:"last_run_users"`
	LastRunUpdates  int           `json:"last_run_updates"`
	LastRunFailures int           `json:"last_run_failures"`
	AverageDuration time.Duration `json:"average_duration"`
}

// record folds a completed run into s. The average is the running mean over
// TotalRuns.
func (s *Stats) record(d time.Duration, processed, updated, failed int) {
	s.TotalRuns++
	s.LastRunDuration = d
	s.LastRunUsers = processed
	s.LastRunUpdates = updated
	s.LastRunFailures = failed
	n := time.Duration(s.TotalRuns)
	if n == 1 {
		s.AverageDuration = d
		return
	}
	s.AverageDuration = (s.AverageDuration*(n-1) + d) / n
}

// Progress is the live counters of the current or most recent run.
type Progress struct {
	CurrentBatch int `json:"current_batch"`
	TotalBatches int `json:"total_batches"`
	TotalUsers   int `json:"total_users"`
	Processed    int `json:"processed_users"`
	Updated      int `json:"updated_users"`
	Departed     int `json:"departed_users"`
	Failed       int `json:"failed_users"`
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Running   bool       `json:"is_running"`
	Enabled   bool       `json:"enabled"`
	Started   bool       `json:"started"`
	Progress  Progress   `json:"progress"`
	LastRunAt *time.Time `json:"last_run_time"`
	NextRunAt *time.Time `json:"next_run_time,omitempty"`
	Stats     Stats      `json:"stats"`
}

// Summary describes one finished run.
type Summary struct {
	Progress
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	TotalRuns int           `json:"total_runs"`
	NextRunAt time.Time     `json:"next_run_at"`
}

func batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

func elapsed(c clock.Clock, since time.Time) time.Duration {
	return c.Now().Sub(since)
}
