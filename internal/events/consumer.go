package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached per-store aggregates.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, storeID string) error
}

type Consumer interface {
	Run(ctx context.Context)
}

type handler struct {
	invalidator CacheInvalidator
	log         *zap.Logger
}

func (h handler) handle(ctx context.Context, channel string, payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		h.log.Warn("skipping malformed event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if event.StoreID == "" {
		h.log.Warn("skipping event without store", zap.String("channel", channel))
		return
	}

	h.log.Info("event received",
		zap.String("channel", channel),
		zap.String("store_id", event.StoreID),
		zap.String("order_id", event.OrderID),
		zap.String("to_status", string(event.ToStatus)),
	)

	if h.invalidator == nil {
		return
	}
	if err := h.invalidator.Invalidate(ctx, event.StoreID); err != nil {
		h.log.Error("failed to invalidate dashboard cache", zap.String("store_id", event.StoreID), zap.Error(err))
	}
}

type RedisConsumer struct {
	client *redis.Client
	handler
}

func NewRedisConsumer(client *redis.Client, invalidator CacheInvalidator, log *zap.Logger) *RedisConsumer {
	return &RedisConsumer{client: client, handler: handler{invalidator: invalidator, log: log}}
}

// Run subscribes to every event channel until ctx is cancelled.
func (c *RedisConsumer) Run(ctx context.Context) {
	sub := c.client.Subscribe(ctx, Channels...)
	defer sub.Close()

	ch := sub.Channel()
	c.log.Info("subscribed to channels", zap.Strings("channels", Channels))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.handle(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

type KafkaConsumer struct {
	reader *kafka.Reader
	handler
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaConsumer(reader *kafka.Reader, invalidator CacheInvalidator, log *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{reader: reader, handler: handler{invalidator: invalidator, log: log}}
}

func (c *KafkaConsumer) Run(ctx context.Context) {
	defer c.reader.Close()
	c.log.Info("reading kafka topic", zap.String("topic", c.reader.Config().Topic))

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			c.log.Error("failed to read message", zap.Error(err))
			continue
		}
		channel := ""
		for _, h := range msg.Headers {
			if h.Key == "event" {
				channel = string(h.Value)
			}
		}
		c.handle(ctx, channel, msg.Value)
	}
}
