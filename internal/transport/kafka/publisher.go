package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

type syncProducer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

var newSyncProducer = func(brokers []string, cfg *sarama.Config) (syncProducer, error) {
	return sarama.NewSyncProducer(brokers, cfg)
}

// Publisher relays events to other instances through a Kafka topic.
// A nil *Publisher drops events silently.
type Publisher struct {
	producer syncProducer
	topic    string
	logger   logx.Logger
}

// NewPublisher creates a Publisher. It returns nil, nil when Kafka is not configured.
func NewPublisher(logger logx.Logger, brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logx.Nop()
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Publisher{producer: p, topic: topic, logger: logger.With(logx.String("topic", topic))}, nil
}

// Publish sends ev keyed by order id, so events of one order stay ordered.
func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	if p == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(FromDomain(ev))
	if err != nil {
		return Permanent(fmt.Errorf("encode event: %w", err))
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.OrderID),
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		return fmt.Errorf("kafka send: %w", err)
	}
	p.logger.Debug("event published",
		logx.String("event_id", ev.ID),
		logx.String("type", string(ev.Type)),
		logx.Int("partition", int(partition)),
		logx.Int64("offset", offset),
	)
	return nil
}

// Close closes the producer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
