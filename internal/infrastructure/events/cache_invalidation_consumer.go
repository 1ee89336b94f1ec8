package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/aewis/internal/config"
	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/logger"
)

// messageReader is the subset of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// LocalInvalidator drops a college's report from this replica's in-process cache.
type LocalInvalidator interface {
	InvalidateLocal(collegeID string)
}

// CacheInvalidationConsumer listens for collection change events published by
// any replica and drops the matching local report cache entries.
type CacheInvalidationConsumer struct {
	reader      messageReader
	invalidator LocalInvalidator
	logger      logger.Logger
}

// NewCacheInvalidationConsumer creates a consumer for the events topic.
// Every replica needs its own group so each one sees every event.
func NewCacheInvalidationConsumer(cfg config.KafkaConfig, groupID string, invalidator LocalInvalidator, log logger.Logger) *CacheInvalidationConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.EventsTopic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})
	return newCacheInvalidationConsumer(reader, invalidator, log)
}

func newCacheInvalidationConsumer(r messageReader, invalidator LocalInvalidator, log logger.Logger) *CacheInvalidationConsumer {
	return &CacheInvalidationConsumer{
		reader:      r,
		invalidator: invalidator,
		logger:      log.WithComponent("CacheInvalidationConsumer"),
	}
}

// Start runs the consumer loop until ctx is cancelled or the reader is closed.
// It blocks and should be run in a goroutine.
func (c *CacheInvalidationConsumer) Start(ctx context.Context) {
	c.logger.Info(ctx, "starting cache invalidation consumer")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Info(context.Background(), "stopping cache invalidation consumer")
				return
			}
			c.logger.Error(ctx, "failed to fetch message from kafka", err)
			continue
		}

		var event models.DomainEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.CollegeID == "" {
			c.logger.Warn(ctx, "discarding undecodable domain event", logger.String("kafka_message", string(msg.Value)))
			// Poison pills are committed so they are not redelivered.
			c.commit(ctx, msg)
			continue
		}

		c.invalidator.InvalidateLocal(event.CollegeID)
		c.logger.Debug(ctx, "local report cache invalidated",
			logger.String("college_id", event.CollegeID),
			logger.String("event_type", string(event.Type)),
		)
		c.commit(ctx, msg)
	}
}

func (c *CacheInvalidationConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Warn(ctx, "failed to commit kafka offset", logger.Err(err))
	}
}

// Stop closes the reader, which unblocks Start.
func (c *CacheInvalidationConsumer) Stop() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error(context.Background(), "failed to close kafka reader", err)
	}
}
