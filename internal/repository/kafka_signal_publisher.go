package repository

import (
	"context"

	"CryptoIntel/internal/domain/models"
	xkafka "CryptoIntel/pkg/kafka"
	xlogger "CryptoIntel/pkg/logger"
)

// KafkaSignalPublisher forwards every detection pass to a Kafka topic,
// keyed by symbol so one asset's signals stay in order.
type KafkaSignalPublisher struct {
	producer *xkafka.Producer
	topic    string
	logger   *xlogger.Logger
}

func NewKafkaSignalPublisher(producer *xkafka.Producer, topic string, logger *xlogger.Logger) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With("signal-publisher"),
	}
}

func (p *KafkaSignalPublisher) PublishSignals(ctx context.Context, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	messages := make([]xkafka.Message, 0, len(signals))
	for _, s := range signals {
		messages = append(messages, xkafka.Message{Key: []byte(s.Symbol), Value: s})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, messages); err != nil {
		return err
	}

	p.logger.Debug("signals published", xlogger.Int("count", len(signals)))
	return nil
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}
