package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
)

// CollectionHeader carries the collection path on every Kafka message.
const CollectionHeader = "collection"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaStore appends each document to a topic, keyed by document id. A
// downstream consumer owns materialising the collection.
type KafkaStore struct {
	writer messageWriter
}

func NewKafkaStore(brokers []string, topic string) (*KafkaStore, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka store: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka store: no topic configured")
	}
	return &KafkaStore{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}, nil
}

// ParseBrokers splits a comma-separated broker list.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func buildMessage(collection, id string, n *Notification) (kafka.Message, error) {
	value, err := json.Marshal(n)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal notification: %w", err)
	}
	return kafka.Message{
		Key:     []byte(id),
		Value:   value,
		Headers: []kafka.Header{{Key: CollectionHeader, Value: []byte(collection)}},
	}, nil
}

func (s *KafkaStore) Add(ctx context.Context, collection, id string, n *Notification) error {
	msg, err := buildMessage(collection, id, n)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (s *KafkaStore) Close() error {
	return s.writer.Close()
}
