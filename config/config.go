package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Jambase   JambaseConfig
	Database  DatabaseConfig
	Supabase  SupabaseConfig
	Scheduler SchedulerConfig
	Sync      SyncConfig
	DBPath    string
	LogLevel  string
	Sources   map[string]*SourceConfig
}

type JambaseConfig struct {
	APIKey string
}

type DatabaseConfig struct {
	URL string
}

type SupabaseConfig struct {
	URL        string
	ServiceKey string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type SyncConfig struct {
	DelayMS int
}

// SourceConfig describes one upstream events source. Jambase is the only
// source shipped, defined either by a YAML file under config/sources or by
// the built-in default.
type SourceConfig struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Endpoint      string `yaml:"endpoint"`
	PerPage       int    `yaml:"per_page"`
	RateLimitMS   int    `yaml:"rate_limit_ms"`
	RetryAttempts int    `yaml:"retry_attempts"`
	RetryBaseMS   int    `yaml:"retry_base_ms"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Jambase: JambaseConfig{
			APIKey: os.Getenv("JAMBASE_API_KEY"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Supabase: SupabaseConfig{
			URL:        os.Getenv("SUPABASE_URL"),
			ServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SYNC_CRON"),
		},
		Sync: SyncConfig{
			DelayMS: getEnvInt("SYNC_DELAY_MS", 500),
		},
		DBPath:   getEnv("DB_PATH", "sync.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Sources:  make(map[string]*SourceConfig),
	}

	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSourceConfigs(); err != nil {
		return nil, err
	}

	if _, ok := cfg.Sources["jambase"]; !ok {
		cfg.Sources["jambase"] = DefaultJambaseSource()
	}
	for _, src := range cfg.Sources {
		applySourceDefaults(src)
	}

	return cfg, nil
}

// DefaultJambaseSource is the built-in source definition used when no YAML
// override is present.
func DefaultJambaseSource() *SourceConfig {
	return &SourceConfig{
		ID:       "jambase",
		Name:     "Jambase",
		Endpoint: "https://www.jambase.com/jb-api/v1/events",
	}
}

func applySourceDefaults(src *SourceConfig) {
	if src.PerPage == 0 {
		src.PerPage = 100
	}
	if src.RetryAttempts == 0 {
		src.RetryAttempts = 3
	}
	if src.RetryBaseMS == 0 {
		src.RetryBaseMS = 1000
	}
}

func (c *Config) loadSourceConfigs() error {
	configDir := "config/sources"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var src SourceConfig
		if err := yaml.Unmarshal(data, &src); err != nil {
			return err
		}

		c.Sources[src.ID] = &src
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
