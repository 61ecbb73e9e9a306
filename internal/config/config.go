// Package config loads service configuration from environment variables.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Storage   StorageConfig
	Knowledge KnowledgeConfig
	Session   SessionConfig
	Reasoner  ReasonerConfig
}

// Load reads the full configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	reasoner, err := loadReasonerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Storage:   StorageConfig{Path: strings.TrimSpace(os.Getenv("DB_PATH"))},
		Knowledge: KnowledgeConfig{Dir: getEnvOrDefault("KNOWLEDGE_PATH", "data/knowledge")},
		Session:   session,
		Reasoner:  reasoner,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model backend.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials were provided. The
// service runs in template-only mode without them.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or the AK/SK pair")
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
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// StorageConfig describes session persistence. An empty Path selects the
// in-memory store.
type StorageConfig struct {
	Path string
}

// KnowledgeConfig locates the knowledge base directory.
type KnowledgeConfig struct {
	Dir string
}

// SessionConfig tunes conversation orchestration.
type SessionConfig struct {
	TTL             time.Duration
	DefaultLanguage string
	StoryMinLength  int
	TipCount        int
}

func loadSessionConfig() (SessionConfig, error) {
	ttlMinutes := 30
	if override, err := parseOptionalIntEnv("SESSION_TTL_MINUTES"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SessionConfig{}, fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", *override)
		}
		ttlMinutes = *override
	}

	lang := getEnvOrDefault("DEFAULT_LANGUAGE", "id")
	if lang != "id" && lang != "en" {
		return SessionConfig{}, fmt.Errorf("unsupported DEFAULT_LANGUAGE %q", lang)
	}

	storyMin := 50
	if override, err := parseOptionalIntEnv("STORY_MIN_LENGTH"); err != nil {
		return SessionConfig{}, err
	} else if override != nil && *override > 0 {
		storyMin = *override
	}

	tipCount := 3
	if override, err := parseOptionalIntEnv("TIP_COUNT"); err != nil {
		return SessionConfig{}, err
	} else if override != nil && *override > 0 {
		tipCount = *override
	}

	return SessionConfig{
		TTL:             time.Duration(ttlMinutes) * time.Minute,
		DefaultLanguage: lang,
		StoryMinLength:  storyMin,
		TipCount:        tipCount,
	}, nil
}

// ReasonerConfig tunes retries and timeouts of the generation calls.
type ReasonerConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	CallTimeout time.Duration
}

func loadReasonerConfig() (ReasonerConfig, error) {
	attempts := 3
	if override, err := parseOptionalIntEnv("REASONER_MAX_ATTEMPTS"); err != nil {
		return ReasonerConfig{}, err
	} else if override != nil && *override > 0 {
		attempts = *override
	}

	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("REASONER_TIMEOUT_SECONDS"); err != nil {
		return ReasonerConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return ReasonerConfig{
		MaxAttempts: attempts,
		BackoffBase: 2 * time.Second,
		BackoffCap:  10 * time.Second,
		CallTimeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
