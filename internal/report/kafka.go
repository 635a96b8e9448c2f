package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"discadian/pkg/platform/clock"
)

// ErrSinkUnavailable is returned while the broker circuit is open.
var ErrSinkUnavailable = errors.New("report sink unavailable")

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaSink publishes reports as JSON records keyed by nation.
type KafkaSink struct {
	producer producer
	topic    string
	breaker  *breaker
	logger   *slog.Logger
}

// KafkaOption configures a KafkaSink.
type KafkaOption func(*kafkaOptions)

type kafkaOptions struct {
	logger    *slog.Logger
	clock     clock.Clock
	threshold int
	cooldown  time.Duration
}

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(o *kafkaOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithKafkaClock(c clock.Clock) KafkaOption {
	return func(o *kafkaOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithCircuitBreaker sets how many consecutive failures open the circuit and
// for how long.
func WithCircuitBreaker(threshold int, cooldown time.Duration) KafkaOption {
	return func(o *kafkaOptions) {
		o.threshold = threshold
		o.cooldown = cooldown
	}
}

// NewKafkaSink connects to brokers and makes sure topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string, opts ...KafkaOption) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := ensureTopic(ctx, kadm.NewClient(client), topic); err != nil {
		client.Close()
		return nil, err
	}
	return newKafkaSink(client, topic, opts...), nil
}

func newKafkaSink(p producer, topic string, opts ...KafkaOption) *KafkaSink {
	o := kafkaOptions{logger: slog.New(slog.DiscardHandler), clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	return &KafkaSink{
		producer: p,
		topic:    topic,
		breaker:  newBreaker(o.clock, o.threshold, o.cooldown),
		logger:   o.logger,
	}
}

func ensureTopic(ctx context.Context, adm *kadm.Client, topic string) error {
	resp, err := adm.CreateTopics(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *KafkaSink) Publish(ctx context.Context, e Event) error {
	if !s.breaker.allow() {
		return ErrSinkUnavailable
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(e.Nation),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(e.Kind)},
		},
	}
	if err := s.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		s.breaker.failure()
		s.logger.WarnContext(ctx, "report publish failed",
			"kind", e.Kind,
			"topic", s.topic,
			"circuit_open", s.breaker.open(),
			"error", err,
		)
		return fmt.Errorf("publish report: %w", err)
	}
	s.breaker.success()
	return nil
}

// Close flushes and closes the client.
func (s *KafkaSink) Close() {
	s.producer.Close()
}
