package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultCronExpression fires the weekly batch Sunday 23:59 when no schedule
// has ever been configured.
const DefaultCronExpression = "59 23 * * 0"

type DepotConfig struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

type GeocoderConfig struct {
	// OpenCage API key; when empty only the Nominatim fallback is used.
	OpenCageKey string `json:"opencage_key"`
	// Minimum OpenCage confidence score accepted for a match.
	MinConfidence int `json:"min_confidence"`
}

type OptimizerConfig struct {
	Generations    int `json:"generations"`
	PopulationSize int `json:"population_size"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	// Operations mailbox that receives route-ready announcements.
	OpsEmail string `json:"ops_email"`
}

type Config struct {
	DatabaseURL string          `json:"database_url"`
	RedisAddr   string          `json:"redis_addr"`
	Port        string          `json:"port"`
	SeedPath    string          `json:"seed_path"`
	Depot       DepotConfig     `json:"depot"`
	Geocoder    GeocoderConfig  `json:"geocoder"`
	Optimizer   OptimizerConfig `json:"optimizer"`
	Mail        MailConfig      `json:"mail"`
}

func (c *Config) SetDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.SeedPath == "" {
		c.SeedPath = "data/seeds/orders.json"
	}
	if c.Depot == (DepotConfig{}) {
		c.Depot = DepotConfig{
			Lat:     -32.9557,
			Lon:     -60.6489,
			Address: "UTN FRRo, Av. Pellegrini 250, Rosario, Santa Fe",
		}
	}
	if c.Geocoder.MinConfidence == 0 {
		c.Geocoder.MinConfidence = 7
	}
	if c.Optimizer.Generations == 0 {
		c.Optimizer.Generations = 200
	}
	if c.Optimizer.PopulationSize == 0 {
		c.Optimizer.PopulationSize = 50
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 465
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("config: database_url is required")
	}
	if c.Optimizer.Generations < 1 || c.Optimizer.PopulationSize < 2 {
		return errors.New("config: optimizer requires generations >= 1 and population_size >= 2")
	}
	if c.Depot.Address == "" {
		return errors.New("config: depot address is required")
	}
	return nil
}

// Load reads the config file at path (YAML or JSON), then applies WRS_
// environment overrides (WRS_DATABASE_URL, WRS_DEPOT__LAT, ...). An empty
// path skips the file and relies on defaults plus environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("config: unsupported format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("config: load %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("WRS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "wrs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns an environment variable or a fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
