package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/laundry-service/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

const (
	OrderCreatedChannel       = "order.created"
	OrderStatusChangedChannel = "order.status_changed"
	PaymentRecordedChannel    = "payment.recorded"
	FeaturesUpdatedChannel    = "store.features_updated"
)

var Channels = []string{
	OrderCreatedChannel,
	OrderStatusChangedChannel,
	PaymentRecordedChannel,
	FeaturesUpdatedChannel,
}

type Event struct {
	Type       string            `json:"type"`
	StoreID    string            `json:"storeId"`
	OrderID    string            `json:"orderId,omitempty"`
	FromStatus model.OrderStatus `json:"fromStatus,omitempty"`
	ToStatus   model.OrderStatus `json:"toStatus,omitempty"`
	At         time.Time         `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, event Event) error {
	event.Type = channel
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, data).Err()
}

// KafkaPublisher writes every channel to one topic. The channel travels in
// the "event" header and the order ID is the partition key.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, channel string, event Event) error {
	event.Type = channel
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := event.OrderID
	if key == "" {
		key = event.StoreID
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: []kafka.Header{{Key: "event", Value: []byte(channel)}},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
