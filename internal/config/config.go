package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location, overridable with
// CONTRACTME_CONFIG.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"databaseURL"`
	LogLevel    string `yaml:"logLevel"`

	AuthSecret   string `yaml:"authSecret"`
	AuthIssuer   string `yaml:"authIssuer"`
	AuthAudience string `yaml:"authAudience"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	AMQPURL     string `yaml:"amqpURL"`
	EnrichQueue string `yaml:"enrichQueue"`

	AIBaseURL string `yaml:"aiBaseURL"`
	AIAPIKey  string `yaml:"aiAPIKey"`
	AIModel   string `yaml:"aiModel"`

	VoiceBaseURL        string `yaml:"voiceBaseURL"`
	VoiceAPIKey         string `yaml:"voiceAPIKey"`
	VoiceAssistantID    string `yaml:"voiceAssistantID"`
	VoiceCallerNumberID string `yaml:"voiceCallerNumberID"`
	VoiceWebhookSecret  string `yaml:"voiceWebhookSecret"`

	InternalToken string `yaml:"internalToken"`

	MaxOffers         int `yaml:"maxOffers"`
	OfferStaggerSecs  int `yaml:"offerStaggerSeconds"`
	RateLimitPerMin   int `yaml:"rateLimitPerMinute"`
	EnrichConcurrency int `yaml:"enrichConcurrency"`
	NotifyConcurrency int `yaml:"notifyConcurrency"`
}

// Load reads config from path (defaults to config.yaml) with environment
// overrides for secrets and deploy-specific endpoints.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	if v := os.Getenv("CONTRACTME_CONFIG"); v != "" {
		path = v
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("CONTRACTME_AUTH_SECRET"); v != "" {
		cfg.AuthSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("AI_BASE_URL"); v != "" {
		cfg.AIBaseURL = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AIAPIKey = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AIModel = v
	}
	if v := os.Getenv("VOICE_API_KEY"); v != "" {
		cfg.VoiceAPIKey = v
	}
	if v := os.Getenv("VOICE_WEBHOOK_SECRET"); v != "" {
		cfg.VoiceWebhookSecret = v
	}
	if v := os.Getenv("CONTRACTME_INTERNAL_TOKEN"); v != "" {
		cfg.InternalToken = v
	}
	if v := os.Getenv("CONTRACTME_MAX_OFFERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxOffers = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.AuthSecret == "" {
		return errors.New("config: authSecret is required (set in config.yaml or CONTRACTME_AUTH_SECRET)")
	}
	if cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required (set in config.yaml or REDIS_ADDR)")
	}
	if cfg.AMQPURL == "" {
		return errors.New("config: amqpURL is required (set in config.yaml or AMQP_URL)")
	}
	return nil
}

// OfferStagger returns the configured stagger as a duration.
func (c FileConfig) OfferStagger() time.Duration {
	if c.OfferStaggerSecs <= 0 {
		return 0
	}
	return time.Duration(c.OfferStaggerSecs) * time.Second
}
