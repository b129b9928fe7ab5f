// Package kafka publishes quotation lifecycle events for downstream
// consumers (reporting, audit).  Publishing is best effort: a broker outage
// never fails the request that triggered the event.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// QuoteComputedEvent is published after every successful quotation.
type QuoteComputedEvent struct {
	QuoteID      string    `json:"quote_id"`
	Username     string    `json:"username"`
	Ages         []int     `json:"ages"`
	CurrentCount int       `json:"current_count"`
	ExpiredCount int       `json:"expired_count"`
	ComputedAt   time.Time `json:"computed_at"`
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes quotation events to a single topic.
type Producer struct {
	writer writerInterface
	topic  string
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a producer from the service configuration.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Async:        false,
	}
	return &Producer{writer: w, topic: cfg.Topic, logger: log}
}

// newProducerWithWriter is used by tests.
func newProducerWithWriter(w writerInterface, topic string, log logging.Logger) *Producer {
	return &Producer{writer: w, topic: topic, logger: log}
}

// PublishQuoteComputed sends one event, keyed by quote ID so that replays of
// the same quotation land in the same partition.
func (p *Producer) PublishQuoteComputed(ctx context.Context, ev QuoteComputedEvent) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeInternal, "kafka producer closed")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal quote event")
	}

	msg := kafka.Message{
		Key:   []byte(ev.QuoteID),
		Value: payload,
		Time:  ev.ComputedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish quote event")
	}

	p.logger.Debug("published quote event",
		logging.String("topic", p.topic),
		logging.String("quote_id", ev.QuoteID),
	)
	return nil
}

// Close flushes buffered messages and shuts the writer down.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
