// Package report delivers staff-facing reports: link contradictions raised
// during verification and reconciliation run summaries.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Kind names a report.
type Kind string

const (
	KindContradiction Kind = "contradiction"
	KindDeparture     Kind = "departure"
	KindRunSummary    Kind = "run_summary"
)

// Event is one report.
type Event struct {
	Kind       Kind              `json:"kind"`
	Nation     string            `json:"nation,omitempty"`
	DiscordID  string            `json:"discord_id,omitempty"`
	PlayerUUID string            `json:"player_uuid,omitempty"`
	IGN        string            `json:"ign,omitempty"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Sink accepts reports.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// LogSink writes reports to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, e Event) error {
	level := slog.LevelInfo
	if e.Kind == KindContradiction {
		level = slog.LevelWarn
	}
	attrs := []any{
		"kind", e.Kind,
		"nation", e.Nation,
		"discord_id", e.DiscordID,
		"player_uuid", e.PlayerUUID,
		"ign", e.IGN,
	}
	for k, v := range e.Attributes {
		attrs = append(attrs, k, v)
	}
	s.logger.Log(ctx, level, e.Message, attrs...)
	return nil
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit logs e as an audit line and publishes it to sink. A publish failure is
// logged, never returned.
func Emit(ctx context.Context, logger *slog.Logger, sink Sink, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	if logger != nil {
		logger.InfoContext(ctx, string(e.Kind),
			"log_type", "audit",
			"nation", e.Nation,
			"discord_id", e.DiscordID,
			"player_uuid", e.PlayerUUID,
		)
	}
	if sink == nil {
		return
	}
	if err := sink.Publish(ctx, e); err != nil && logger != nil {
		logger.ErrorContext(ctx, "failed to publish report",
			"kind", e.Kind,
			"discord_id", e.DiscordID,
			"error", err,
		)
	}
}
