package config

import "fmt"

// Log store drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LogStoreConfig selects and configures the backend holding saved log entries
type LogStoreConfig struct {
	Driver     string         `yaml:"driver"`      // file | postgres | sqlite
	Path       string         `yaml:"path"`        // NDJSON file, file driver only
	SQLitePath string         `yaml:"sqlite_path"` // sqlite driver only
	Database   DatabaseConfig `yaml:"database"`    // postgres driver only
}

// SetDefaults sets default values for the selected driver
func (c *LogStoreConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverFile
		fmt.Printf("Warning: log_store.driver not set, defaulting to %s\n", c.Driver)
	}
	switch c.Driver {
	case DriverFile:
		if c.Path == "" {
			c.Path = "logs.json"
			fmt.Printf("Warning: log_store.path not set, defaulting to %s\n", c.Path)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = "logs.db"
			fmt.Printf("Warning: log_store.sqlite_path not set, defaulting to %s\n", c.SQLitePath)
		}
	case DriverPostgres:
		c.Database.SetDefaults()
	}
}

// Validate checks the driver is known and its settings are usable
func (c *LogStoreConfig) Validate() error {
	switch c.Driver {
	case DriverFile:
		if c.Path == "" {
			return fmt.Errorf("log_store.path is required for the file driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("log_store.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database configuration error: %w", err)
		}
	default:
		return fmt.Errorf("unsupported log_store.driver %q (want file, postgres or sqlite)", c.Driver)
	}
	return nil
}
