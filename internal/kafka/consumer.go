package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *slog.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.With(slog.String("topic", topic)),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeNotifications decodes every message and hands it to handler until ctx
// is done. Undecodable messages and handler failures are logged and skipped so
// one bad message cannot block the partition.
func (c *Consumer) ConsumeNotifications(ctx context.Context, handler func(context.Context, NotificationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		event, err := DecodeNotification(msg)
		if err != nil {
			c.log.Error("skip undecodable message", sl.Err(err))
			continue
		}

		if err := handler(ctx, event); err != nil {
			c.log.Error("notification handler failed",
				slog.String("type", event.Type), slog.String("user_id", event.UserID), sl.Err(err))
		}
	}
}
