// v0
// internal/stream/publisher.go
// Package stream forwards successful readings to a Kafka topic so downstream
// consumers can ingest the same values the scrape endpoint exposes. The
// stream is optional and strictly fire-and-forget: publish failures never
// touch the snapshot or the cycle health.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/your-org/electricity-exporter/internal/grid"
)

// messageWriter captures the write capability shared by the raw Kafka writer
// and test fakes.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	log   *slog.Logger
	w     messageWriter
	close func() error
}

// New builds a publisher writing to topic on the given brokers. Messages are
// keyed by zone so one zone's readings stay on one partition.
func New(log *slog.Logger, brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &Publisher{log: log, w: w, close: w.Close}
}

// Publish sends one reading as JSON. The caller's context bounds the write.
func (p *Publisher) Publish(ctx context.Context, r grid.Reading) error {
	b, err := json.Marshal(r)
	if err != nil {
		p.log.Error("reading marshal failed", "zone", r.Zone, "kind", r.Kind, "err", err)
		return err
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(r.Zone), Value: b, Time: r.Taken}); err != nil {
		p.log.Error("kafka write failed", "zone", r.Zone, "kind", r.Kind, "err", err)
		return err
	}
	return nil
}

// Close shuts down the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.close == nil {
		return nil
	}
	return p.close()
}
