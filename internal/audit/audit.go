package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/Meesho/BharatMLStack/inferline/internal/config"
	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
	kafka "github.com/segmentio/kafka-go"
)

var (
	kafkaWriter   *kafka.Writer
	samplePercent int
)

// Record is one served prediction, published for offline analysis.
type Record struct {
	RequestID   string  `json:"request_id"`
	Probability float64 `json:"probability"`
	LatencyMs   int64   `json:"latency_ms"`
	ServedAt    string  `json:"served_at"`
}

// InitAuditLogger initializes the Kafka writer for prediction logging.
// Publishing stays disabled when bootstrap servers are not configured.
func InitAuditLogger(appConfigs *config.AppConfigs) {
	bootstrapServers := appConfigs.Configs.KafkaBootstrapServers
	if bootstrapServers == "" {
		logger.Info("Kafka bootstrap servers not configured, prediction audit logging disabled")
		return
	}
	topic := appConfigs.Configs.KafkaAuditTopic
	if topic == "" {
		logger.Info("Kafka audit topic not configured, prediction audit logging disabled")
		return
	}
	samplePercent = appConfigs.Configs.KafkaAuditSamplePercent

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(bootstrapServers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
	logger.Info(fmt.Sprintf("Kafka audit writer initialised for topic: %s", topic))
}

// PublishPrediction sends a sampled prediction record to Kafka. Async and
// best-effort: the serving path never waits on the broker.
func PublishPrediction(record Record) {
	if kafkaWriter == nil {
		return
	}
	if samplePercent < 100 && rand.Intn(100)+1 > samplePercent {
		return
	}

	data, err := json.Marshal(record)
	if err != nil {
		logger.Error("Error marshalling audit record", err)
		return
	}
	if err := kafkaWriter.WriteMessages(context.Background(), kafka.Message{Value: data}); err != nil {
		logger.PercentError("Error sending audit record to Kafka", err, 10)
		metrics.Count("inferline.audit.error", 1, nil)
		return
	}
	metrics.Count("inferline.audit.sent", 1, nil)
}

func CloseAuditLogger() {
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("Error closing Kafka audit writer", err)
		}
		kafkaWriter = nil
	}
}
