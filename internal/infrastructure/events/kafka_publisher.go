// Package events publishes and consumes tenant collection change events over Kafka.
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/aewis/internal/config"
	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/logger"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ service.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher is a Kafka-backed implementation of service.EventPublisher.
// Events are keyed by college id so a college's events stay ordered on one partition.
type KafkaPublisher struct {
	writer messageWriter
	logger logger.Logger
}

// NewKafkaPublisher creates a new KafkaPublisher.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.EventsTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(w messageWriter, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: log.WithComponent("KafkaPublisher")}
}

// Publish sends an event to the events topic.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.DomainEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal domain event", err)
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CollegeID),
		Value: bytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err,
			logger.String("event_type", string(event.Type)),
			logger.String("college_id", event.CollegeID),
		)
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs events instead of sending them. Used when Kafka is disabled.
type LogPublisher struct {
	logger logger.Logger
}

var _ service.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log.WithComponent("LogPublisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.DomainEvent) error {
	p.logger.Debug(ctx, "domain event",
		logger.String("event_id", event.ID),
		logger.String("event_type", string(event.Type)),
		logger.String("college_id", event.CollegeID),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
