package notify

import (
	"context"
	"encoding/json"
	"fmt"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaSink exports status changes to a topic, keyed by order id so the
// changes of one order stay in one partition.
type KafkaSink struct {
	writer *kafkaGo.Writer
}

// NewKafkaSink creates a sink writing to topic
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafkaGo.Writer{
			Addr:         kafkaGo.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkaGo.Hash{},
			RequiredAcks: kafkaGo.RequireOne,
		},
	}
}

func (k *KafkaSink) Name() string { return "kafka" }

func (k *KafkaSink) Publish(ctx context.Context, evt StatusChange) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(evt.OrderID),
		Value: payload,
		Time:  evt.Timestamp,
	})
}

// Close flushes and closes the writer
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
