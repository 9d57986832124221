// Package publish emits forecast rows as Kafka events.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/seenimoa/stockcast/pkg/models"
)

// DefaultTopic receives one event per forecast row.
const DefaultTopic = "stockcast.forecasts"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the JSON payload of a forecast message.
type Event struct {
	RunID       string             `json:"run_id,omitempty"`
	PublishedAt time.Time          `json:"published_at"`
	Row         models.ForecastRow `json:"forecast"`
}

// Kafka publishes rows keyed by symbol, so every forecast of a ticker lands
// on the same partition.
type Kafka struct {
	w     messageWriter
	topic string
	RunID string
	now   func() time.Time
}

// NewKafka creates a publisher for brokers. An empty topic uses DefaultTopic.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, errors.New("brokers are required")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Gzip,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		BatchTimeout:           100 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafka(w, topic), nil
}

func newKafka(w messageWriter, topic string) *Kafka {
	return &Kafka{w: w, topic: topic, now: time.Now}
}

func (k *Kafka) Name() string { return "kafka" }

// Topic returns the destination topic.
func (k *Kafka) Topic() string { return k.topic }

// Write sends every row in one batch.
func (k *Kafka) Write(ctx context.Context, rows []models.ForecastRow) error {
	if len(rows) == 0 {
		return nil
	}
	now := k.now().UTC()
	msgs := make([]kafka.Message, 0, len(rows))
	for _, r := range rows {
		v, err := json.Marshal(Event{RunID: k.RunID, PublishedAt: now, Row: r})
		if err != nil {
			return fmt.Errorf("marshal forecast %s: %w", r.Symbol, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.Symbol), Value: v, Time: now})
	}
	if err := k.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d forecasts to %s: %w", len(msgs), k.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.w.Close()
}
