package config

import (
	"fmt"
	"time"
)

// DatabaseConfig defines the PostgreSQL connection settings used by the postgres log store
type DatabaseConfig struct {
	DSN            string `yaml:"dsn" json:"dsn"`
	MaxConnections int    `yaml:"max_connections" json:"max_connections"`
	MinConnections int    `yaml:"min_connections" json:"min_connections"`
	MaxIdleTime    string `yaml:"max_idle_time" json:"max_idle_time"`
	MaxLifetime    string `yaml:"max_lifetime" json:"max_lifetime"`
}

// SetDefaults fills unset pool settings
func (c *DatabaseConfig) SetDefaults() {
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
		fmt.Printf("Warning: log_store.database.max_connections not set or invalid, defaulting to %d\n", c.MaxConnections)
	}
	if c.MinConnections <= 0 {
		c.MinConnections = 2
		fmt.Printf("Warning: log_store.database.min_connections not set or invalid, defaulting to %d\n", c.MinConnections)
	}
	if c.MaxIdleTime == "" {
		c.MaxIdleTime = "30m"
		fmt.Printf("Warning: log_store.database.max_idle_time not set, defaulting to %s\n", c.MaxIdleTime)
	}
	if c.MaxLifetime == "" {
		c.MaxLifetime = "1h"
		fmt.Printf("Warning: log_store.database.max_lifetime not set, defaulting to %s\n", c.MaxLifetime)
	}
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("database max_connections must be positive")
	}
	if c.MinConnections < 0 {
		return fmt.Errorf("database min_connections cannot be negative")
	}
	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min_connections (%d) cannot be greater than max_connections (%d)",
			c.MinConnections, c.MaxConnections)
	}
	if _, err := time.ParseDuration(c.MaxIdleTime); err != nil {
		return fmt.Errorf("database max_idle_time %q is not a duration: %w", c.MaxIdleTime, err)
	}
	if _, err := time.ParseDuration(c.MaxLifetime); err != nil {
		return fmt.Errorf("database max_lifetime %q is not a duration: %w", c.MaxLifetime, err)
	}
	return nil
}

// Durations returns the parsed idle and lifetime limits. Call after Validate.
func (c *DatabaseConfig) Durations() (maxIdle, maxLifetime time.Duration) {
	maxIdle, _ = time.ParseDuration(c.MaxIdleTime)
	maxLifetime, _ = time.ParseDuration(c.MaxLifetime)
	return maxIdle, maxLifetime
}

// LogConfiguration prints the pool settings, never the DSN
func (c *DatabaseConfig) LogConfiguration() {
	fmt.Printf("Database Configuration:\n")
	fmt.Printf("  Max Connections: %d\n", c.MaxConnections)
	fmt.Printf("  Min Connections: %d\n", c.MinConnections)
	fmt.Printf("  Max Idle Time: %s\n", c.MaxIdleTime)
	fmt.Printf("  Max Lifetime: %s\n", c.MaxLifetime)
	fmt.Printf("  DSN: [configured]\n")
}
