package events

import (
	"context"
	"encoding/json"
	"time"

	"crazygels/internal/logger"

	"github.com/segmentio/kafka-go"
)

const Topic = "catalog-events"

// Event types published by the API and consumed by the worker.
const (
	TypeCatalogPromoted = "catalog.promoted"
	TypeProductListed   = "product.listed"
	TypePriceAlert      = "price.alert"
	TypeScrapedBatch    = "scrape.batch"
	TypeExportRequested = "export.requested"
)

type Event struct {
	Type        string                 `json:"type"`
	ProductHash string                 `json:"product_hash,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Producer publishes catalog events to Kafka. When no brokers are
// configured it degrades to a no-op so local API runs don't need Kafka.
type Producer struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewProducer(brokers string, logger *logger.Logger) *Producer {
	if brokers == "" {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
		return &Producer{logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// Publish sends one event. Failures are logged, not returned: a Kafka
// outage must never fail the API request that triggered the event.
func (p *Producer) Publish(ctx context.Context, event Event) {
	if p.writer == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event %s: %v", event.Type, err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProductHash),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to publish event %s: %v", event.Type, err)
		return
	}

	p.logger.Debug("Published event %s", event.Type)
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
