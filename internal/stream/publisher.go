package stream

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/avolkov/marketplace-order-service/internal/config"
	"github.com/avolkov/marketplace-order-service/internal/entities"

	"github.com/segmentio/kafka-go"
)

// Publisher writes order lifecycle records to the order-events topic.
// Downstream consumers (analytics, warehousing) read this feed; user
// notifications never flow through it.
type Publisher struct {
	logger *slog.Logger
	writer *kafka.Writer
	topic  string
}

func NewPublisher(logger *slog.Logger, cfg config.Stream) *Publisher {
	return &Publisher{
		logger: logger.With(slog.String("component", "stream")),
		topic:  cfg.Topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

func (p *Publisher) PublishOrderEvent(ctx context.Context, ev entities.OrderEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when the feed is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, entities.OrderEvent) error { return nil }
