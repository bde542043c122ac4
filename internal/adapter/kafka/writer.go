package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/config"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// maxMessageBytes bounds a single produce request. It matches the broker's
// default message.max.bytes; a full-resolution sweep serializes to a few
// hundred kilobytes after compression.
const maxMessageBytes = 1 << 20

// Writer publishes sweeps to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sweep topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchBytes:   maxMessageBytes,
		Compression:  kafkago.Snappy,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes a site's sweeps in a single
// WriteMessages call. Keys are sweep IDs, so reprocessed sweeps land on the
// same partition.
func (w *Writer) LoadBatch(ctx context.Context, sweeps []domain.Sweep) error {
	if len(sweeps) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(sweeps))
	for i := range sweeps {
		msg, err := serializeToMessage(sweeps[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d sweeps: %w", len(msgs), err)
	}
	w.logger.Debug("sweeps published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a sweep's compact form into a Kafka message.
func serializeToMessage(sweep domain.Sweep) (kafkago.Message, error) {
	data, err := json.Marshal(sweep.Compact())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sweep: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sweep.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "site", Value: []byte(sweep.Site)},
			{Key: "product", Value: []byte(sweep.Product.Code)},
			{Key: "processed_at", Value: []byte(sweep.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
