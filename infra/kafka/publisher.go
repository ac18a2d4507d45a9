package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/factory"
	"github.com/kilianp07/rentmatch/core/notify"
	"github.com/kilianp07/rentmatch/infra/logger"
)

// Config configures the Kafka publisher.
type Config struct {
	Brokers      []string      `json:"brokers"`
	Topic        string        `json:"topic"`
	BatchTimeout time.Duration `json:"batch_timeout"`
	RequiredAcks int           `json:"required_acks"`
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes each booking event as one Kafka message keyed by booking
// id, so all events of a booking land on the same partition in order.
type Publisher struct {
	w      messageWriter
	topic  string
	logger logger.Logger
}

func init() {
	_ = notify.RegisterPublisher("kafka", func(conf map[string]any) (notify.Publisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPublisher(c)
	})
}

// NewPublisher returns a publisher backed by a kafka.Writer.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka publisher requires brokers and topic")
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	acks := kafka.RequireAll
	if cfg.RequiredAcks == 1 {
		acks = kafka.RequireOne
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: acks,
	}
	return newPublisher(w, cfg.Topic), nil
}

func newPublisher(w messageWriter, topic string) *Publisher {
	return &Publisher{w: w, topic: topic, logger: logger.New("kafka_publisher")}
}

// Publish implements notify.Publisher.
func (p *Publisher) Publish(ctx context.Context, ev events.BookingEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: payload,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	p.logger.Debugf("event %s for booking %s written to %s", ev.Kind, ev.BookingID, p.topic)
	return nil
}

// Close flushes pending messages.
func (p *Publisher) Close() error { return p.w.Close() }
