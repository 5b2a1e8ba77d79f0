package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultDBName        = "MoodKitUserData_v4.db"
	DriverSQLite         = "sqlite"
	DriverPostgres       = "postgres"
	DefaultMigrationsDir = "./migrations"
	defaultEnvFile       = "./configs/.env"
)

var (
	once     sync.Once
	instance *Config
)

type Config struct {
	DataDir        string `mapstructure:"MOODKIT_DATA_DIR"`
	DBName         string `mapstructure:"MOODKIT_DB_NAME"`
	DBDriver       string `mapstructure:"MOODKIT_DB_DRIVER"`
	AttachmentsDir string `mapstructure:"MOODKIT_ATTACHMENTS_DIR"`
	Workers        int    `mapstructure:"MOODKIT_WORKERS"`
	LogLevel       string `mapstructure:"MOODKIT_LOG_LEVEL"`
	LogFile        string `mapstructure:"MOODKIT_LOG_FILE"`
	// Applied on open for the postgres driver. Empty skips migrations
	MigrationsDir string `mapstructure:"MOODKIT_MIGRATIONS_DIR"`

	PostgresAddress  string `mapstructure:"POSTGRES_DB_ADDRESS"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`
	PostgresSSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
}

// New loads the process-wide config once from ./configs/.env and the environment.
func New() *Config {
	once.Do(func() {
		cfg, err := Load(defaultEnvFile)
		if err != nil {
			log.Fatal("loading config error: ", err)
		}
		instance = cfg
	})
	return instance
}

// Load reads envFile when it exists, then the environment. Variables already set in the
// environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading envs error: %w", err)
		}
	}
	v := viper.New()
	v.SetDefault("MOODKIT_DATA_DIR", "")
	v.SetDefault("MOODKIT_DB_NAME", DefaultDBName)
	v.SetDefault("MOODKIT_DB_DRIVER", DriverSQLite)
	v.SetDefault("MOODKIT_ATTACHMENTS_DIR", "")
	v.SetDefault("MOODKIT_WORKERS", 4)
	v.SetDefault("MOODKIT_LOG_LEVEL", "info")
	v.SetDefault("MOODKIT_LOG_FILE", "")
	v.SetDefault("MOODKIT_MIGRATIONS_DIR", DefaultMigrationsDir)
	v.SetDefault("POSTGRES_DB_ADDRESS", "")
	v.SetDefault("POSTGRES_USER", "")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_DB", "")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("MOODKIT_DATA_DIR is required")
	}
	if c.DBName == "" || filepath.Base(c.DBName) != c.DBName {
		return fmt.Errorf("MOODKIT_DB_NAME must be a bare file name, got %q", c.DBName)
	}
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.PostgresAddress == "" || c.PostgresDB == "" {
			return errors.New("POSTGRES_DB_ADDRESS and POSTGRES_DB are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown MOODKIT_DB_DRIVER %q", c.DBDriver)
	}
	if c.Workers < 1 {
		return fmt.Errorf("MOODKIT_WORKERS must be positive, got %d", c.Workers)
	}
	return nil
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBName)
}

func (c *Config) AttachmentsPath() string {
	if c.AttachmentsDir != "" {
		return c.AttachmentsDir
	}
	return filepath.Join(c.DataDir, "attachments")
}

func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "moodkit.log")
}
