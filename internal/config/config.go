// Package config provides configuration structures and validation for the
// application. It handles environment-based configuration for all major
// components including server settings, database connections, the message
// queue, document storage, and the reconciliation pipeline.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all
// components. Each field represents a major subsystem's configuration and is
// validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Storage     StorageConfig
	Extraction  ExtractionConfig
	Matching    MatchingConfig
	AuditTrail  AuditTrailConfig
	WorkerPool  WorkerPoolConfig
	Assistant   AssistantConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers             string
	ReconciliationTopic string
	NumPartitions       int // Number of partitions for topics
	ReplicationFactor   int // Replication factor for topics
	ConsumerGroup       string
	MinBytes            int
	MaxBytes            int
	MaxWait             time.Duration
	StartOffset         int64
	DLQTopic            string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the audit trail store
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// StorageConfig selects and configures the document file storage backend
type StorageConfig struct {
	Backend   string // "local" or "gcs"
	LocalDir  string // Base directory for the local backend
	GCSBucket string // Bucket name for the gcs backend
}

// ExtractionConfig configures the document extraction adapter
type ExtractionConfig struct {
	Model   string        // Generative model used for field extraction
	Timeout time.Duration // Hard bound on a single extraction call
}

// MatchingConfig holds the tunable matching policy. Weights are relative
// contributions to the combined candidate score.
type MatchingConfig struct {
	DateWindowDays int     // Candidates outside ±window are disqualified
	AmountWeight   float64 // Weight of amount proximity
	DateWeight     float64 // Weight of date proximity
	TextWeight     float64 // Weight of counterparty/description similarity
	MinScore       float64 // Candidates below this combined score are NoMatch
	// SuggestWithoutTransaction controls whether a document with no matching
	// transaction still yields a suggested entry (for categories whose
	// direction can be inferred).
	SuggestWithoutTransaction bool
	// AccountsFile optionally points to a YAML file overriding the built-in
	// chart-of-accounts mapping.
	AccountsFile string
}

// AuditTrailConfig contains audit outbox poller configuration
type AuditTrailConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of delivery attempts per record
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// AssistantConfig configures the chat assistant passthrough
type AssistantConfig struct {
	Enabled bool
	Model   string
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.ReconciliationTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_RECONCILIATION_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Storage config
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			validationErrors = append(validationErrors, "STORAGE_LOCAL_DIR is required for the local backend")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			validationErrors = append(validationErrors, "STORAGE_GCS_BUCKET is required for the gcs backend")
		}
	default:
		validationErrors = append(validationErrors, "STORAGE_BACKEND must be 'local' or 'gcs'")
	}

	// Validate Extraction config
	if c.Extraction.Model == "" {
		validationErrors = append(validationErrors, "EXTRACTION_MODEL is required")
	}
	if c.Extraction.Timeout <= 0 {
		validationErrors = append(validationErrors, "EXTRACTION_TIMEOUT must be greater than 0")
	}

	// Validate Matching config
	if c.Matching.DateWindowDays <= 0 {
		validationErrors = append(validationErrors, "MATCHING_DATE_WINDOW_DAYS must be greater than 0")
	}
	if c.Matching.AmountWeight < 0 || c.Matching.DateWeight < 0 || c.Matching.TextWeight < 0 {
		validationErrors = append(validationErrors, "matching weights must not be negative")
	}
	if c.Matching.AmountWeight+c.Matching.DateWeight+c.Matching.TextWeight <= 0 {
		validationErrors = append(validationErrors, "at least one matching weight must be positive")
	}
	if c.Matching.MinScore <= 0 || c.Matching.MinScore > 1 {
		validationErrors = append(validationErrors, "MATCHING_MIN_SCORE must be in (0, 1]")
	}

	// Validate AuditTrail config
	if c.AuditTrail.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "AUDIT_POLLING_INTERVAL must be greater than 0")
	}
	if c.AuditTrail.BatchSize <= 0 {
		validationErrors = append(validationErrors, "AUDIT_BATCH_SIZE must be greater than 0")
	}
	if c.AuditTrail.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "AUDIT_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate Assistant config
	if c.Assistant.Enabled && c.Assistant.Model == "" {
		validationErrors = append(validationErrors, "ASSISTANT_MODEL is required when the assistant is enabled")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
