package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const topicProbeAttempts = 5

// ensureTopic creates the topic when the broker does not know it yet. Partition
// reads are retried because a freshly started broker can answer before its
// metadata settles.
func ensureTopic(conn *kafka.Conn, log *slog.Logger, topic string, partitions, replication int) error {
	var (
		known []kafka.Partition
		err   error
	)
	for attempt := 1; attempt <= topicProbeAttempts; attempt++ {
		known, err = conn.ReadPartitions(topic)
		if err == nil {
			break
		}
		log.Warn("Could not read topic partitions", "topic", topic, "attempt", attempt, "error", err)
		time.Sleep(2 * time.Second)
	}

	if len(known) > 0 {
		log.Info("Kafka topic already exists", "topic", topic)
		return nil
	}

	if partitions <= 0 {
		partitions = 1
	}
	if replication <= 0 {
		replication = 1
	}

	log.Info("Creating Kafka topic", "topic", topic, "partitions", partitions, "replication", replication)
	createErr := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replication,
	})
	if createErr != nil {
		return fmt.Errorf("create kafka topic %s: %w", topic, createErr)
	}
	return nil
}
