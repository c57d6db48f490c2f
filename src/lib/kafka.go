package lib

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const (
	TOPIC_OPS_ALERTS        = "ops-alerts"
	TOPIC_TICKETS_CONFIRMED = "tickets-confirmed"
)

var kafkaProducer *kafka.Producer

func GetKafkaProducer(clientId string) (*kafka.Producer, error) {
	if kafkaProducer != nil {
		return kafkaProducer, nil
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}
	kafkaProducer = p
	return p, nil
}

// NewKafkaProducer replaces the producer singleton, used by tests.
func NewKafkaProducer(p *kafka.Producer) {
	kafkaProducer = p
}

// KafkaProduceMessage publishes a JSON payload to a topic. A missing broker
// configuration downgrades the publish to a log line so the engine keeps
// working without the event bus.
func KafkaProduceMessage(clientId string, topic string, payload map[string]any) error {
	if os.Getenv("KAFKA_BROKER") == "" && kafkaProducer == nil {
		log.Printf("[kafka] no broker configured, dropping message for topic %s\n", topic)
		return nil
	}
	p, err := GetKafkaProducer(clientId)
	if err != nil {
		log.Printf("[kafka] Error creating producer: %s\n", err.Error())
		return err
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("[kafka] Error producing message to %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}

func KafkaCreateTopics(topics ...string) error {
	if os.Getenv("KAFKA_BROKER") == "" {
		return nil
	}
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("[kafka] Error on AdminClient: %s\n", err.Error())
		return err
	}
	defer a.Close()
	specs := make([]kafka.TopicSpecification, 0, len(topics))
	for _, t := range topics {
		specs = append(specs, kafka.TopicSpecification{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	_, err = a.CreateTopics(context.Background(), specs)
	if err != nil {
		log.Printf("[kafka] Error creating topics: %s\n", err.Error())
		return err
	}
	return nil
}
