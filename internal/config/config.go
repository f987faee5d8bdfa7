package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"
)

// StorageType selects the persistence backend.
type StorageType string

const (
	StorageMongo  StorageType = "mongo"
	StorageMemory StorageType = "memory"
)

// ClassifierType selects the AI backend.
type ClassifierType string

const (
	ClassifierGemini ClassifierType = "gemini"
	ClassifierOpenAI ClassifierType = "openai"
	// ClassifierNone disables the remote backend entirely; every commit is
	// classified by the local fallback heuristic.
	ClassifierNone ClassifierType = "none"
)

// Config is the main application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Github     GithubConfig     `yaml:"github"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Discord    DiscordConfig    `yaml:"discord"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
}

// ServerConfig represents the webhook/API server configuration.
type ServerConfig struct {
	Address         string        `yaml:"address" env:"SERVER_ADDRESS"`
	WebhookEndpoint string        `yaml:"webhook_endpoint" env:"SERVER_WEBHOOK_ENDPOINT"`
	Timeout         time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT"`
}

// StorageConfig represents persistence configuration.
type StorageConfig struct {
	Type     StorageType `yaml:"type" env:"STORAGE_TYPE"`
	MongoURI string      `yaml:"mongo_uri" env:"MONGODB_URI"`
	Database string      `yaml:"database" env:"MONGODB_DATABASE"`
}

// GithubConfig represents the GitHub collaborator configuration.
type GithubConfig struct {
	Token         string `yaml:"token" env:"GITHUB_TOKEN"`
	WebhookSecret string `yaml:"webhook_secret" env:"GITHUB_WEBHOOK_SECRET"`
	WebhookURL    string `yaml:"webhook_url" env:"GITHUB_WEBHOOK_URL"`
}

// ClassifierConfig represents AI classifier configuration.
type ClassifierConfig struct {
	Type        ClassifierType `yaml:"type" env:"CLASSIFIER_TYPE"`
	APIKey      string         `yaml:"api_key" env:"CLASSIFIER_API_KEY"`
	Model       string         `yaml:"model" env:"CLASSIFIER_MODEL"`
	BaseURL     string         `yaml:"base_url" env:"CLASSIFIER_BASE_URL"`
	ProxyURL    string         `yaml:"proxy_url" env:"CLASSIFIER_PROXY_URL"`
	Timeout     time.Duration  `yaml:"timeout" env:"CLASSIFIER_TIMEOUT"`
	MaxTokens   int            `yaml:"max_tokens" env:"CLASSIFIER_MAX_TOKENS"`
	Temperature float32        `yaml:"temperature" env:"CLASSIFIER_TEMPERATURE"`
}

// DiscordConfig represents the notification sink configuration.
type DiscordConfig struct {
	Token     string `yaml:"token" env:"DISCORD_TOKEN"`
	ChannelID string `yaml:"channel_id" env:"DISCORD_CHANNEL_ID"`
}

// WatcherConfig represents the expiry watcher configuration.
type WatcherConfig struct {
	Interval time.Duration `yaml:"interval" env:"WATCHER_INTERVAL"`
}

// PipelineConfig represents commit intake configuration.
type PipelineConfig struct {
	PoolSize int `yaml:"pool_size" env:"PIPELINE_POOL_SIZE"`
	// ClassifyDelay is the courtesy spacing between AI calls.
	ClassifyDelay time.Duration `yaml:"classify_delay" env:"PIPELINE_CLASSIFY_DELAY"`
	MaxBatchSize  int           `yaml:"max_batch_size" env:"PIPELINE_MAX_BATCH_SIZE"`
}

// Load reads configuration from an optional YAML file plus environment.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, errm.Wrap(err, "read config file")
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, errm.Wrap(err, "read config from env")
		}
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// SetDefaults sets default values for configuration.
func (c *Config) SetDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "0.0.0.0:8080"
	}
	if c.Server.WebhookEndpoint == "" {
		c.Server.WebhookEndpoint = "/api/github/webhook"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Storage.Type == "" {
		c.Storage.Type = StorageMongo
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "onecommit"
	}

	if c.Classifier.Type == "" {
		c.Classifier.Type = ClassifierNone
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = 30 * time.Second
	}
	if c.Classifier.MaxTokens == 0 {
		c.Classifier.MaxTokens = 1000
	}
	if c.Classifier.Temperature == 0 {
		c.Classifier.Temperature = 0.3
	}

	if c.Watcher.Interval == 0 {
		c.Watcher.Interval = time.Minute
	}

	if c.Pipeline.PoolSize == 0 {
		c.Pipeline.PoolSize = 20
	}
	if c.Pipeline.ClassifyDelay == 0 {
		c.Pipeline.ClassifyDelay = 2 * time.Second
	}
	if c.Pipeline.MaxBatchSize == 0 {
		c.Pipeline.MaxBatchSize = 100
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return ErrMissingMongoURI
		}
	case StorageMemory:
	default:
		return ErrInvalidStorageType
	}

	switch c.Classifier.Type {
	case ClassifierGemini, ClassifierOpenAI:
		if c.Classifier.APIKey == "" {
			return ErrMissingClassifierKey
		}
	case ClassifierNone:
	default:
		return ErrInvalidClassifierType
	}

	if c.Github.Token == "" {
		return ErrMissingGithubToken
	}

	return nil
}
