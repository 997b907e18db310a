package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter часть *kafka.Writer, нужная публикатору
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config параметры подключения к Kafka
type Config struct {
	Brokers      string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaPublisher публикует события бронирований в Kafka
type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
	log     Logger
}

// NewKafkaPublisher создает публикатор поверх kafka.Writer
// Брокеры перечисляются через запятую
func NewKafkaPublisher(cfg Config, log Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(splitBrokers(cfg.Brokers)...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer, cfg, log)
}

// NewKafkaPublisherWithWriter создает публикатор с произвольным writer (для тестов)
func NewKafkaPublisherWithWriter(writer MessageWriter, cfg Config, log Logger) *KafkaPublisher {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaPublisher{
		writer:  writer,
		topic:   cfg.Topic,
		timeout: timeout,
		log:     log,
	}
}

// Publish записывает событие в топик
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: type=%s: %v", ErrMarshal, event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: type=%s, booking=%d: %v", ErrPublish, event.Type, event.Booking.ID, err)
	}

	p.log.Info("Events: published %s for booking=%d", event.Type, event.Booking.ID)
	return nil
}

// Close закрывает writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher используется, когда Kafka выключена
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

func splitBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
