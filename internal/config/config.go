package config

import (
	"log"

	"github.com/spf13/viper"
)

// Defaults for every recognized option. Environment variables override
// these at startup.
const (
	DefaultQueueCapacity          = 2000
	DefaultQueueWatermarkFraction = 0.8
	DefaultBatchWindowMs          = 5
	DefaultBatchMaxSize           = 32
	DefaultRequestTimeoutMs       = 100
)

func InitConfig(appConfigs *AppConfigs) {
	viper.AutomaticEnv()

	// Manually bind environment variables to mapstructure keys so the
	// unmarshal below picks them up regardless of key casing.
	bindEnvVars()
	setDefaults()

	if err := viper.Unmarshal(&appConfigs.Configs); err != nil {
		log.Fatalf("Failed to unmarshal config from environment: %v", err)
	}

	log.Println("Configuration loaded from environment variables")
}

func bindEnvVars() {
	// Application config
	viper.BindEnv("app_env", "APP_ENV")
	viper.BindEnv("app_log_level", "APP_LOG_LEVEL")
	viper.BindEnv("app_name", "APP_NAME")
	viper.BindEnv("app_port", "APP_PORT")

	// Telegraf config
	viper.BindEnv("metrics_sampling_rate", "METRICS_SAMPLING_RATE")
	viper.BindEnv("telegraf_host", "TELEGRAF_HOST")
	viper.BindEnv("telegraf_port", "TELEGRAF_PORT")

	// Model config
	viper.BindEnv("model_path", "MODEL_PATH")

	// Pipeline config
	viper.BindEnv("queue_capacity", "QUEUE_CAPACITY")
	viper.BindEnv("queue_highWatermarkFraction", "QUEUE_HIGH_WATERMARK_FRACTION")
	viper.BindEnv("batch_windowMs", "BATCH_WINDOW_MS")
	viper.BindEnv("batch_maxSize", "BATCH_MAX_SIZE")
	viper.BindEnv("request_timeoutMs", "REQUEST_TIMEOUT_MS")

	// Prediction cache config
	viper.BindEnv("predictionCache_enabled", "PREDICTION_CACHE_ENABLED")
	viper.BindEnv("predictionCache_sizeInBytes", "PREDICTION_CACHE_SIZE_IN_BYTES")
	viper.BindEnv("predictionCache_ttlSec", "PREDICTION_CACHE_TTL_SEC")

	// Kafka audit config
	viper.BindEnv("kafka_bootstrapServers", "KAFKA_BOOTSTRAP_SERVERS")
	viper.BindEnv("kafka_auditTopic", "KAFKA_AUDIT_TOPIC")
	viper.BindEnv("kafka_auditSamplePercent", "KAFKA_AUDIT_SAMPLE_PERCENT")
}

func setDefaults() {
	viper.SetDefault("app_env", "local")
	viper.SetDefault("app_log_level", "INFO")
	viper.SetDefault("app_name", "inferline")
	viper.SetDefault("app_port", 8080)

	viper.SetDefault("metrics_sampling_rate", "1.0")
	viper.SetDefault("telegraf_host", "localhost")
	viper.SetDefault("telegraf_port", "8125")

	viper.SetDefault("model_path", "./model.json")

	viper.SetDefault("queue_capacity", DefaultQueueCapacity)
	viper.SetDefault("queue_highWatermarkFraction", DefaultQueueWatermarkFraction)
	viper.SetDefault("batch_windowMs", DefaultBatchWindowMs)
	viper.SetDefault("batch_maxSize", DefaultBatchMaxSize)
	viper.SetDefault("request_timeoutMs", DefaultRequestTimeoutMs)

	viper.SetDefault("predictionCache_enabled", false)
	viper.SetDefault("predictionCache_sizeInBytes", 32*1024*1024)
	viper.SetDefault("predictionCache_ttlSec", 60)

	viper.SetDefault("kafka_auditSamplePercent", 10)
}
