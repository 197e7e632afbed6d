package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// MockBroker makes the archiver read from the in-process mock consumer instead of Kafka
const MockBroker = "mock://local"

// KafkaConsumerConfig defines configuration for the saved-log event consumer
type KafkaConsumerConfig struct {
	Brokers           []string `yaml:"brokers"`            // e.g., ["kafka1:9092"] or ["mock://local"]
	Topic             string   `yaml:"topic"`              // Topic to consume from
	GroupID           string   `yaml:"group_id"`           // Consumer group ID
	Count             int      `yaml:"count"`              // Number of consumers to create
	SessionTimeout    string   `yaml:"session_timeout"`    // Kafka session timeout
	HeartbeatInterval string   `yaml:"heartbeat_interval"` // Kafka heartbeat interval
	AutoOffsetReset   string   `yaml:"auto_offset_reset"`  // earliest/latest
}

// Mock reports whether the consumer should be the in-process mock
func (c *KafkaConsumerConfig) Mock() bool {
	return len(c.Brokers) > 0 && c.Brokers[0] == MockBroker
}

// SetDefaults sets reasonable default values for Kafka consumer configuration
func (c *KafkaConsumerConfig) SetDefaults() {
	if c.Count <= 0 {
		c.Count = 1
		fmt.Printf("Warning: kafka_consumer.count not set or invalid, defaulting to %d\n", c.Count)
	}
	if c.Topic == "" {
		c.Topic = "safety-logs"
		fmt.Printf("Warning: kafka_consumer.topic not set, defaulting to %s\n", c.Topic)
	}
	if c.GroupID == "" {
		c.GroupID = "safety-archiver"
		fmt.Printf("Warning: kafka_consumer.group_id not set, defaulting to %s\n", c.GroupID)
	}
	if c.SessionTimeout == "" {
		c.SessionTimeout = "30s"
		fmt.Printf("Warning: kafka_consumer.session_timeout not set, defaulting to %s\n", c.SessionTimeout)
	}
	if c.HeartbeatInterval == "" {
		c.HeartbeatInterval = "3s"
		fmt.Printf("Warning: kafka_consumer.heartbeat_interval not set, defaulting to %s\n", c.HeartbeatInterval)
	}
	if c.AutoOffsetReset == "" {
		c.AutoOffsetReset = "earliest"
		fmt.Printf("Warning: kafka_consumer.auto_offset_reset not set, defaulting to %s\n", c.AutoOffsetReset)
	}
}

// WorkerConfig defines configuration for the archive worker pool
type WorkerConfig struct {
	Concurrency        int    `yaml:"concurrency"`          // Workers per consumer
	BatchSize          int    `yaml:"batch_size"`           // Entries per store write
	BatchTimeout       string `yaml:"batch_timeout"`        // Maximum wait before a partial batch is written
	ConsumerRetryDelay string `yaml:"consumer_retry_delay"` // Delay when consumer encounters errors
	StoreTimeout       string `yaml:"store_timeout"`        // Timeout for one batch write
}

// SetDefaults sets reasonable default values for worker configuration
func (c *WorkerConfig) SetDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 1
		fmt.Printf("Warning: worker.concurrency not set or invalid, defaulting to %d\n", c.Concurrency)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
		fmt.Printf("Warning: worker.batch_size not set or invalid, defaulting to %d\n", c.BatchSize)
	}
	if c.BatchTimeout == "" {
		c.BatchTimeout = "1s"
		fmt.Printf("Warning: worker.batch_timeout not set, defaulting to %s\n", c.BatchTimeout)
	}
	if c.ConsumerRetryDelay == "" {
		c.ConsumerRetryDelay = "5s"
		fmt.Printf("Warning: worker.consumer_retry_delay not set, defaulting to %s\n", c.ConsumerRetryDelay)
	}
	if c.StoreTimeout == "" {
		c.StoreTimeout = "10s"
		fmt.Printf("Warning: worker.store_timeout not set, defaulting to %s\n", c.StoreTimeout)
	}
}

// ArchiverConfig defines all configuration for the archiver
type ArchiverConfig struct {
	KafkaConsumer KafkaConsumerConfig `yaml:"kafka_consumer"`
	Worker        WorkerConfig        `yaml:"worker"`
	LogStore      LogStoreConfig      `yaml:"log_store"`
}

// LoadArchiverConfig loads configuration from the specified YAML file path
func LoadArchiverConfig(path string) (*ArchiverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return ParseArchiverConfig(data)
}

// ParseArchiverConfig parses, defaults and validates an archiver YAML document
func ParseArchiverConfig(data []byte) (*ArchiverConfig, error) {
	var cfg ArchiverConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
	}

	cfg.KafkaConsumer.SetDefaults()
	cfg.Worker.SetDefaults()
	cfg.LogStore.SetDefaults()

	if len(cfg.KafkaConsumer.Brokers) == 0 {
		return nil, fmt.Errorf("configuration error: kafka_consumer.brokers is required")
	}
	if err := cfg.LogStore.Validate(); err != nil {
		return nil, fmt.Errorf("log store configuration error: %w", err)
	}
	return &cfg, nil
}
