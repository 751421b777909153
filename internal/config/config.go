package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/kelseyhightower/envconfig"
)

// Config aggregates every setting of the service.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	AI     AIConfig
	Chat   ChatConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Store: store, AI: ai, Chat: chat}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`

	Addr string `ignored:"true"`
}

func loadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("server config: %w", err)
	}

	port := strings.TrimSpace(cfg.Port)
	switch {
	case port == "":
		cfg.Addr = ":8080"
	case strings.Contains(port, " "):
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	case strings.Contains(port, ":"):
		// ":8080" and "127.0.0.1:8080" are accepted as-is.
		cfg.Addr = port
	default:
		cfg.Addr = ":" + port
	}

	origins := make([]string, 0, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg.CORSOrigins = origins

	return cfg, nil
}

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// StoreConfig selects and configures the message store.
type StoreConfig struct {
	Driver       string `envconfig:"STORE_DRIVER" default:"mongo"`
	HistoryLimit int    `envconfig:"HISTORY_LIMIT" default:"1000"`

	MongoURL        string `envconfig:"MONGO_URL"`
	MongoDatabase   string `envconfig:"DB_NAME"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"chat_messages"`

	SQLiteDSN string `envconfig:"SQLITE_DSN" default:"chat.db"`

	BadgerPath string `envconfig:"BADGER_PATH" default:"data/badger"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

func loadStoreConfig() (StoreConfig, error) {
	var cfg StoreConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return StoreConfig{}, fmt.Errorf("store config: %w", err)
	}
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = 1000
	}
	return cfg, cfg.Validate()
}

// Validate checks that the selected driver has what it needs.
func (c StoreConfig) Validate() error {
	switch c.Driver {
	case DriverMongo:
		if c.MongoURL == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_URL and DB_NAME are required for the %s store", DriverMongo)
		}
	case DriverSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("SQLITE_DSN is required for the %s store", DriverSQLite)
		}
	case DriverBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required for the %s store", DriverBadger)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the %s store", DriverRedis)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Driver)
	}
	return nil
}

// Completion providers.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// AIConfig describes the completion provider.
type AIConfig struct {
	Provider string `envconfig:"AI_PROVIDER" default:"gemini"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-pro"`

	ArkAPIKey    string   `envconfig:"ARK_API_KEY"`
	ArkAccessKey string   `envconfig:"ARK_ACCESS_KEY"`
	ArkSecretKey string   `envconfig:"ARK_SECRET_KEY"`
	ArkModel     string   `envconfig:"ARK_MODEL"`
	ArkBaseURL   string   `envconfig:"ARK_BASE_URL" default:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion    string   `envconfig:"ARK_REGION" default:"cn-beijing"`
	Temperature  *float64 `envconfig:"AI_TEMPERATURE"`
	TopP         *float64 `envconfig:"AI_TOP_P"`
	MaxTokens    *int     `envconfig:"AI_MAX_TOKENS"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

func loadAIConfig() (AIConfig, error) {
	var cfg AIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AIConfig{}, fmt.Errorf("ai config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, cfg.Validate()
}

// Validate checks the credentials of the selected provider.
func (c AIConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the %s provider", ProviderGemini)
		}
	case ProviderArk:
		if !c.ArkEnabled() {
			return fmt.Errorf("ark provider needs ARK_MODEL and ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the %s provider", ProviderOpenAI)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.Provider)
	}
	return nil
}

// ArkEnabled reports whether the Ark credentials are present.
func (c AIConfig) ArkEnabled() bool {
	return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
}

// NewArkChatModel creates an Ark chat model from the configuration.
func (c AIConfig) NewArkChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("ark credentials or model missing")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ArkModel,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

// ChatConfig tunes the session service.
type ChatConfig struct {
	PersonaID string `envconfig:"CHAT_PERSONA" default:"consumer-law"`
	Greeting  string `envconfig:"CHAT_GREETING" default:"Consumer Protection Legal Chatbot API"`
	// RollbackOnGatewayFailure removes the user turn when the completion fails
	// instead of leaving it dangling.
	RollbackOnGatewayFailure bool `envconfig:"CHAT_ROLLBACK_ON_GATEWAY_FAILURE" default:"false"`
}

func loadChatConfig() (ChatConfig, error) {
	var cfg ChatConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ChatConfig{}, fmt.Errorf("chat config: %w", err)
	}
	return cfg, nil
}
