package config

import "time"

type Configs struct {
	ApplicationEnv      string `mapstructure:"app_env"`
	ApplicationLogLevel string `mapstructure:"app_log_level"`
	ApplicationName     string `mapstructure:"app_name"`
	ApplicationPort     int    `mapstructure:"app_port"`

	//telegraf-config
	MetricsSamplingRate string `mapstructure:"metrics_sampling_rate"`
	Telegraf_Host       string `mapstructure:"telegraf_host"`
	Telegraf_Port       string `mapstructure:"telegraf_port"`

	//model-config
	ModelPath string `mapstructure:"model_path"`

	//pipeline-config
	QueueCapacity          int     `mapstructure:"queue_capacity"`
	QueueWatermarkFraction float64 `mapstructure:"queue_highWatermarkFraction"`
	BatchWindowMs          int     `mapstructure:"batch_windowMs"`
	BatchMaxSize           int     `mapstructure:"batch_maxSize"`
	RequestTimeoutMs       int     `mapstructure:"request_timeoutMs"`

	//prediction-cache-config
	PredictionCacheEnabled     bool `mapstructure:"predictionCache_enabled"`
	PredictionCacheSizeInBytes int  `mapstructure:"predictionCache_sizeInBytes"`
	PredictionCacheTTLSec      int  `mapstructure:"predictionCache_ttlSec"`

	//kafka-audit-config
	KafkaBootstrapServers   string `mapstructure:"kafka_bootstrapServers"`
	KafkaAuditTopic         string `mapstructure:"kafka_auditTopic"`
	KafkaAuditSamplePercent int    `mapstructure:"kafka_auditSamplePercent"`
}

type AppConfigs struct {
	Configs Configs
}

func (c *Configs) BatchWindow() time.Duration {
	return time.Duration(c.BatchWindowMs) * time.Millisecond
}

func (c *Configs) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c *Configs) PredictionCacheTTL() time.Duration {
	return time.Duration(c.PredictionCacheTTLSec) * time.Second
}

// WatermarkDepth is the queue depth at which the admission gate starts
// shedding load.
func (c *Configs) WatermarkDepth() int {
	return int(float64(c.QueueCapacity) * c.QueueWatermarkFraction)
}
