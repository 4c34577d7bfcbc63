package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       App       `yaml:"app" envconfig:"APP"`
	Database  Database  `yaml:"database" envconfig:"DB"`
	Store     Store     `yaml:"store" envconfig:"STORE"`
	Media     Media     `yaml:"media" envconfig:"MEDIA"`
	Webhook   Webhook   `yaml:"webhook" envconfig:"WEBHOOK"`
	Scheduler Scheduler `yaml:"scheduler" envconfig:"SCHEDULER"`
	Redis     Redis     `yaml:"redis" envconfig:"REDIS"`
	Log       Log       `yaml:"log" envconfig:"LOG"`
	Allows    Allows    `yaml:"allows" envconfig:"ALLOWS"`
}

type App struct {
	Name      string `yaml:"name" envconfig:"NAME"`
	Port      string `yaml:"port" envconfig:"PORT" validate:"required"`
	Host      string `yaml:"host" envconfig:"HOST"`
	JWTSecret string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	// PrintQR renders pairing codes on the console, handy when running locally.
	PrintQR bool `yaml:"print_qr" envconfig:"PRINT_QR"`
}

type Database struct {
	Driver string `yaml:"driver" envconfig:"DRIVER" validate:"oneof=postgres sqlite"`
	Host   string `yaml:"host" envconfig:"HOST" validate:"required_if=Driver postgres"`
	Port   string `yaml:"port" envconfig:"PORT"`
	User   string `yaml:"user" envconfig:"USER"`
	Pass   string `yaml:"pass" envconfig:"PASSWORD"`
	Name   string `yaml:"name" envconfig:"NAME" validate:"required_if=Driver postgres"`
	Path   string `yaml:"path" envconfig:"PATH" validate:"required_if=Driver sqlite"`
}

// Store is where the protocol library keeps pairing credentials.
type Store struct {
	Dialect string `yaml:"dialect" envconfig:"DIALECT" validate:"oneof=sqlite pgx"`
	DSN     string `yaml:"dsn" envconfig:"DSN" validate:"required"`
}

type Media struct {
	Dir     string `yaml:"dir" envconfig:"DIR" validate:"required"`
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`
}

type Webhook struct {
	Workers   int           `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
	QueueSize int           `yaml:"queue_size" envconfig:"QUEUE_SIZE" validate:"min=1"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"min=1ms"`
	UserAgent string        `yaml:"user_agent" envconfig:"USER_AGENT"`
}

type Scheduler struct {
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL" validate:"min=1ms"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	Addr    string `yaml:"addr" envconfig:"ADDR" validate:"required_if=Enabled true"`
	Pass    string `yaml:"pass" envconfig:"PASSWORD"`
	Channel string `yaml:"channel" envconfig:"CHANNEL"`
}

type Log struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Pretty bool   `yaml:"pretty" envconfig:"PRETTY"`
}

type Allows struct {
	Methods []string `yaml:"methods" envconfig:"METHODS"`
	Origins []string `yaml:"origins" envconfig:"ORIGINS"`
	Headers []string `yaml:"headers" envconfig:"HEADERS"`
}

// InitConfig reads ./config.yaml and applies environment overrides on top.
func InitConfig() (*Config, error) {
	file_name, _ := filepath.Abs("./config.yaml")
	return Load(file_name)
}

// Load reads the YAML file at path (a missing file is not an error),
// overlays environment variables, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	var configs Config
	yaml_file, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(yaml_file) > 0 {
		if err := yaml.Unmarshal(yaml_file, &configs); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := envconfig.Process("", &configs); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	configs.applyDefaults()

	if err := validator.New().Struct(&configs); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &configs, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "wa-akg"
	}
	if c.App.Port == "" {
		c.App.Port = "8000"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Store.Dialect == "" {
		c.Store.Dialect = "sqlite"
	}
	if c.Store.DSN == "" && c.Store.Dialect == "sqlite" {
		c.Store.DSN = "file:./data/credentials.db?_pragma=foreign_keys(1)"
	}
	if c.Media.Dir == "" {
		c.Media.Dir = "./data/media"
	}
	if c.Media.BaseURL == "" {
		c.Media.BaseURL = "/media"
	}
	if c.Webhook.Workers == 0 {
		c.Webhook.Workers = 8
	}
	if c.Webhook.QueueSize == 0 {
		c.Webhook.QueueSize = 1024
	}
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 10 * time.Second
	}
	if c.Webhook.UserAgent == "" {
		c.Webhook.UserAgent = "WA-AKG-Webhook/1.0"
	}
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = 10 * time.Second
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "wa-akg:session-status"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
