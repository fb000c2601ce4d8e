package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher пишет события в топик Kafka.
// Ключ сообщения - ID записи, чтобы события одной записи шли в одну партицию.
type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
}

// NewKafkaPublisher создает издателя поверх kafka.Writer
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewKafkaPublisherWithWriter(writer, topic, timeout)
}

// NewKafkaPublisherWithWriter создает издателя с произвольным writer (для тестов)
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  writer,
		topic:   topic,
		timeout: timeout,
	}
}

// Publish отправляет событие с заголовками event_id, event_type и trace context
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(e.ID)},
		{Key: "event_type", Value: []byte(e.Type)},
	}
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	msg := kafka.Message{
		Key:     []byte(strconv.FormatInt(e.AppointmentID, 10)),
		Value:   payload,
		Headers: carrier.headers,
		Time:    e.OccurredAt,
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: topic=%s, event=%s: %v", ErrPublish, p.topic, e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// SplitBrokers parses a comma-separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
