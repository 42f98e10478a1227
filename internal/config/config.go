package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/plan"
	"github.com/claude/odos/internal/recommend"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Planner     PlannerConfig     `yaml:"planner"`
	Inventory   InventoryConfig   `yaml:"inventory"`
	Tailscale   TailscaleConfig   `yaml:"tailscale"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CatalogConfig struct {
	URL          string        `yaml:"url"`
	ImageBaseURL string        `yaml:"image_base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	Attempts     int           `yaml:"attempts"`
}

type RecommenderConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

type PlannerConfig struct {
	Plans           []plan.Definition `yaml:"plans"`
	Equipment       []string          `yaml:"equipment"`
	ExperienceLevel string            `yaml:"experience_level"`
	DurationMinutes int               `yaml:"duration_minutes"`
}

type InventoryConfig struct {
	Exercises []string `yaml:"exercises"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Default returns a config that runs without any file: local HTTP on port
// 8080, the public exercise catalog, and recommendations disabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Catalog: CatalogConfig{
			URL:          catalog.DefaultURL,
			ImageBaseURL: catalog.DefaultImageBaseURL,
			Timeout:      30 * time.Second,
			Attempts:     3,
		},
		Recommender: RecommenderConfig{
			Endpoint:    recommend.DefaultEndpoint,
			Model:       recommend.DefaultModel,
			Temperature: recommend.DefaultTemperature,
			MaxTokens:   recommend.DefaultMaxTokens,
			Timeout:     60 * time.Second,
			MaxRetries:  1,
		},
		Planner: PlannerConfig{
			Plans:           plan.DefaultDefinitions(),
			Equipment:       plan.DefaultEquipment(),
			ExperienceLevel: plan.DefaultExperienceLevel,
			DurationMinutes: plan.DefaultDurationMinutes,
		},
		Tailscale: TailscaleConfig{
			Hostname: "odos",
			StateDir: "tsnet-state",
		},
	}
}

// Load starts from Default, overlays the YAML file at path (if path is not
// empty), then applies environment variable overrides. Env vars use the
// prefix ODOS_ and underscore-separated paths:
//
//	ODOS_SERVER_HOST, ODOS_SERVER_PORT,
//	ODOS_LOG_LEVEL, ODOS_LOG_FORMAT,
//	ODOS_CATALOG_URL, ODOS_CATALOG_IMAGE_BASE_URL,
//	ODOS_RECOMMENDER_ENABLED, ODOS_RECOMMENDER_ENDPOINT,
//	ODOS_RECOMMENDER_API_KEY, ODOS_RECOMMENDER_MODEL,
//	ODOS_TAILSCALE_ENABLED, ODOS_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ODOS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ODOS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ODOS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ODOS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ODOS_CATALOG_URL"); v != "" {
		cfg.Catalog.URL = v
	}
	if v := os.Getenv("ODOS_CATALOG_IMAGE_BASE_URL"); v != "" {
		cfg.Catalog.ImageBaseURL = v
	}
	if v := os.Getenv("ODOS_RECOMMENDER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Recommender.Enabled = b
		}
	}
	if v := os.Getenv("ODOS_RECOMMENDER_ENDPOINT"); v != "" {
		cfg.Recommender.Endpoint = v
	}
	if v := os.Getenv("ODOS_RECOMMENDER_API_KEY"); v != "" {
		cfg.Recommender.APIKey = v
	}
	if v := os.Getenv("ODOS_RECOMMENDER_MODEL"); v != "" {
		cfg.Recommender.Model = v
	}
	if v := os.Getenv("ODOS_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("ODOS_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}
	if c.Catalog.URL == "" {
		return fmt.Errorf("catalog.url is required")
	}
	if c.Recommender.Enabled {
		if c.Recommender.Endpoint == "" {
			return fmt.Errorf("recommender.endpoint is required when enabled")
		}
		if c.Recommender.APIKey == "" {
			return fmt.Errorf("recommender.api_key is required when enabled")
		}
	}
	if c.Recommender.Temperature < 0 || c.Recommender.Temperature > 2 {
		return fmt.Errorf("recommender.temperature must be between 0 and 2")
	}
	if c.Recommender.MaxRetries < 0 {
		return fmt.Errorf("recommender.max_retries must not be negative")
	}
	if c.Planner.DurationMinutes <= 0 {
		return fmt.Errorf("planner.duration_minutes must be positive")
	}
	for _, p := range c.Planner.Plans {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("planner.plans: plan name is required")
		}
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when enabled")
	}
	return nil
}

// RecommendConfig converts the recommender section for recommend.NewClient.
func (c RecommenderConfig) RecommendConfig() recommend.Config {
	return recommend.Config{
		Endpoint:    c.Endpoint,
		APIKey:      c.APIKey,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Timeout:     c.Timeout,
		MaxRetries:  c.MaxRetries,
	}
}

// PlanConfig converts the planner section for plan.New.
func (c PlannerConfig) PlanConfig() plan.Config {
	return plan.Config{
		Plans:           c.Plans,
		Equipment:       c.Equipment,
		ExperienceLevel: c.ExperienceLevel,
		DurationMinutes: c.DurationMinutes,
	}
}
