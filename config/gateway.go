package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// KafkaProducerConfig defines configuration for the saved-log event producer.
// Leaving brokers empty disables event publishing.
type KafkaProducerConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`

	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	BatchBytes   int           `yaml:"batch_bytes"`

	RequiredAcks string `yaml:"required_acks"` // none | one | all
	Async        bool   `yaml:"async"`

	WriteTimeout time.Duration `yaml:"write_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`

	// Circuit breaker around publishing
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// Enabled reports whether a Kafka producer should be created
func (c *KafkaProducerConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// SetDefaults sets default breaker and topic values when publishing is enabled
func (c *KafkaProducerConfig) SetDefaults() {
	if !c.Enabled() {
		return
	}
	if c.Topic == "" {
		c.Topic = "safety-logs"
		fmt.Printf("Warning: kafka_producer.topic not set, defaulting to %s\n", c.Topic)
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
		fmt.Printf("Warning: kafka_producer.breaker_failures not set, defaulting to %d\n", c.BreakerFailures)
	}
	if c.BreakerCooldown == 0 {
		c.BreakerCooldown = 30 * time.Second
		fmt.Printf("Warning: kafka_producer.breaker_cooldown not set, defaulting to %v\n", c.BreakerCooldown)
	}
}

// BatchProcessorConfig defines how saved-log events are buffered before publishing
type BatchProcessorConfig struct {
	BatchSize          int           `yaml:"batch_size"`
	BatchTimeout       time.Duration `yaml:"batch_timeout"`
	FlushChannelBuffer int           `yaml:"flush_channel_buffer"`
}

// SetDefaults sets reasonable default values for batch processor configuration
func (c *BatchProcessorConfig) SetDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 50
		fmt.Printf("Warning: batch_processor.batch_size not set, defaulting to %d\n", c.BatchSize)
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 500 * time.Millisecond
		fmt.Printf("Warning: batch_processor.batch_timeout not set, defaulting to %v\n", c.BatchTimeout)
	}
	if c.FlushChannelBuffer == 0 {
		c.FlushChannelBuffer = 16
		fmt.Printf("Warning: batch_processor.flush_channel_buffer not set, defaulting to %d\n", c.FlushChannelBuffer)
	}
}

// HttpServerConfig defines HTTP server configuration
type HttpServerConfig struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// SetDefaults fills zero timeouts and limits
func (c *HttpServerConfig) SetDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = 1 << 20 // 1 MB
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 10 << 20 // 10 MB
	}
}

// CorsConfig lists what cross-origin callers may do. Defaults permit everything.
type CorsConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// SetDefaults opens CORS to all origins, methods and headers
func (c *CorsConfig) SetDefaults() {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"*"}
	}
}

// CryptoConfig selects the AEAD used by the encrypt endpoint.
// The key itself is never configured: it is generated at every process start.
type CryptoConfig struct {
	Algorithm string `yaml:"algorithm"`
}

// Supported crypto.algorithm values
var SupportedAlgorithms = []string{"aes-256-gcm", "chacha20-poly1305"}

// SetDefaults picks AES-256-GCM when no algorithm is configured
func (c *CryptoConfig) SetDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = SupportedAlgorithms[0]
		fmt.Printf("Warning: crypto.algorithm not set, defaulting to %s\n", c.Algorithm)
	}
}

// Validate rejects unknown algorithms
func (c *CryptoConfig) Validate() error {
	for _, alg := range SupportedAlgorithms {
		if c.Algorithm == alg {
			return nil
		}
	}
	return fmt.Errorf("unsupported crypto.algorithm %q (want one of %v)", c.Algorithm, SupportedAlgorithms)
}

// GatewayConfig defines everything the HTTP/gRPC gateway needs
type GatewayConfig struct {
	HttpListenAddr string `yaml:"http_listen_addr"`
	GrpcListenAddr string `yaml:"grpc_listen_addr"`

	HttpServer     HttpServerConfig     `yaml:"http_server"`
	Cors           CorsConfig           `yaml:"cors"`
	Crypto         CryptoConfig         `yaml:"crypto"`
	LogStore       LogStoreConfig       `yaml:"log_store"`
	KafkaProducer  KafkaProducerConfig  `yaml:"kafka_producer"`
	BatchProcessor BatchProcessorConfig `yaml:"batch_processor"`
}

// SetDefaults applies defaults to every section
func (c *GatewayConfig) SetDefaults() {
	c.HttpServer.SetDefaults()
	c.Cors.SetDefaults()
	c.Crypto.SetDefaults()
	c.LogStore.SetDefaults()
	c.KafkaProducer.SetDefaults()
	c.BatchProcessor.SetDefaults()
}

// Validate checks the cross-section invariants
func (c *GatewayConfig) Validate() error {
	if c.HttpListenAddr == "" && c.GrpcListenAddr == "" {
		return fmt.Errorf("configuration error: at least one of http_listen_addr or grpc_listen_addr must be configured")
	}
	if err := c.Crypto.Validate(); err != nil {
		return fmt.Errorf("crypto configuration error: %w", err)
	}
	if err := c.LogStore.Validate(); err != nil {
		return fmt.Errorf("log store configuration error: %w", err)
	}
	return nil
}

// LoadGatewayConfig loads gateway configuration from the specified YAML file path
func LoadGatewayConfig(path string) (*GatewayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway config file '%s': %w", path, err)
	}
	return ParseGatewayConfig(data)
}

// ParseGatewayConfig parses, defaults and validates a gateway YAML document
func ParseGatewayConfig(data []byte) (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse gateway YAML config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
