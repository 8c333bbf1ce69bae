// Package events streams committed audit records to Kafka for downstream
// consumers such as notification and calendar-sync workers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/services"
)

// Writer is the subset of kafka.Writer the publisher uses. Tests inject a
// fake implementation.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditPublisher writes audit records to a Kafka topic, keyed by owner so
// that one owner's records stay ordered within a partition.
type AuditPublisher struct {
	writer Writer
	logger *zap.Logger
}

// NewAuditPublisher creates a publisher over a real Kafka writer.
func NewAuditPublisher(brokers []string, topic string, logger *zap.Logger) *AuditPublisher {
	return NewAuditPublisherWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}, logger)
}

// NewAuditPublisherWithWriter creates a publisher over the given writer.
func NewAuditPublisherWithWriter(writer Writer, logger *zap.Logger) *AuditPublisher {
	return &AuditPublisher{
		writer: writer,
		logger: logger.Named("audit-publisher"),
	}
}

var _ services.AuditPublisher = (*AuditPublisher)(nil)

// PublishAuditRecord implements services.AuditPublisher.
func (p *AuditPublisher) PublishAuditRecord(ctx context.Context, record *models.AuditRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(record.OwnerID.String()),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}

	p.logger.Debug("Published audit record",
		zap.String("record_id", record.ID.String()),
		zap.String("entity_kind", string(record.EntityKind)),
		zap.String("action", string(record.Action)))
	return nil
}

// Close shuts down the underlying writer.
func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}
