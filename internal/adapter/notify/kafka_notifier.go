package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications keyed by cart. The writer runs in
// async mode, so Notify never waits for the broker.
type KafkaNotifier struct {
	writer  messageWriter
	cartKey string
	logger  *zap.Logger
}

func NewKafkaNotifier(cartKey, topic string, logger *zap.Logger, brokers ...string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to publish notifications",
					zap.Int("count", len(messages)),
					zap.Error(err))
			}
		},
	}
	return newKafkaNotifier(w, cartKey, logger)
}

func newKafkaNotifier(w messageWriter, cartKey string, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{writer: w, cartKey: cartKey, logger: logger}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		k.logger.Error("failed to marshal notification", zap.String("id", n.ID), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(k.cartKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("notification")},
			{Key: "notification_type", Value: []byte(n.Type)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.logger.Warn("failed to enqueue notification", zap.String("id", n.ID), zap.Error(err))
	}
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
