package lib

import (
	"artbook/src/config"
	"artbook/src/types"
	"context"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

var (
	kafkaMu       sync.Mutex
	kafkaProducer *kafka.Producer
)

func getKafkaProducer() (*kafka.Producer, error) {
	kafkaMu.Lock()
	defer kafkaMu.Unlock()
	if kafkaProducer != nil {
		return kafkaProducer, nil
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": config.Get().KafkaBroker,
		"client.id":         "artbook-api",
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}
	kafkaProducer = p
	return p, nil
}

// KafkaProduceMessage writes value to topic and waits for the delivery
// report or ctx.
func KafkaProduceMessage(ctx context.Context, topic string, key string, value []byte) error {
	p, err := getKafkaProducer()
	if err != nil {
		zap.S().Errorf("[kafka] could not create producer: %s", err.Error())
		return err
	}
	delivery := make(chan kafka.Event, 1)
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, delivery)
	if err != nil {
		return err
	}
	select {
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// KafkaConsumer polls topic in the background and hands every message
// value to handler until ctx is done.
func KafkaConsumer(ctx context.Context, groupID, topic string, handler types.Handler) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": config.Get().KafkaBroker,
		"group.id":          groupID,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	})
	if err != nil {
		return err
	}
	if err := c.SubscribeTopics([]string{topic}, nil); err != nil {
		c.Close()
		return err
	}
	go func() {
		defer c.Close()
		zap.S().Infof("[kafka] %s: waiting for messages", topic)
		for ctx.Err() == nil {
			switch e := c.Poll(100).(type) {
			case *kafka.Message:
				handler(string(e.Value))
			case kafka.Error:
				zap.S().Errorf("[kafka] %s: %v", topic, e)
				if e.IsFatal() {
					return
				}
			}
		}
	}()
	return nil
}

func KafkaCreateTopics(ctx context.Context, topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": config.Get().KafkaBroker,
	})
	if err != nil {
		return nil, err
	}
	defer a.Close()
	specs := make([]kafka.TopicSpecification, 0, len(topics))
	for _, topic := range topics {
		specs = append(specs, kafka.TopicSpecification{Topic: topic, NumPartitions: 10, ReplicationFactor: 1})
	}
	return a.CreateTopics(ctx, specs)
}

func CloseKafka() {
	kafkaMu.Lock()
	defer kafkaMu.Unlock()
	if kafkaProducer != nil {
		kafkaProducer.Flush(5000)
		kafkaProducer.Close()
		kafkaProducer = nil
	}
}
