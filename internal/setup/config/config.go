package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// Current version of each config file.
const (
	CurrentCommonVersion = 1
	CurrentServerVersion = 1
	CurrentWorkerVersion = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Server ServerConfig
	Worker WorkerConfig
}

// CommonConfig contains configuration shared between the server and worker.
type CommonConfig struct {
	// Version of the common config.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	OpenAI     OpenAI     `koanf:"openai"`
	Detection  Detection  `koanf:"detection"`
	Guardrails Guardrails `koanf:"guardrails"`
	FlagPolicy FlagPolicy `koanf:"flag_policy"`
	Moderation Moderation `koanf:"moderation"`
}

// ServerConfig contains chat API server specific configuration.
type ServerConfig struct {
	// Version of the server config.
	Version int `koanf:"version"`
	// HTTP listen port.
	Port int `koanf:"port"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Rate limiting for chat requests.
	RateLimit RateLimit `koanf:"rate_limit"`
	// Conversation session storage.
	Session Session `koanf:"session"`
}

// WorkerConfig contains moderation worker specific configuration.
type WorkerConfig struct {
	// Version of the worker config.
	Version int `koanf:"version"`
	// Number of queue items to claim per poll.
	BatchSize int `koanf:"batch_size"`
	// Number of tasks processed concurrently.
	Concurrency int `koanf:"concurrency"`
	// Poll interval in milliseconds when the queue is empty.
	PollInterval int `koanf:"poll_interval"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Enable pprof debugging.
	EnablePprof bool `koanf:"enable_pprof"`
	// pprof server port.
	PprofPort int `koanf:"pprof_port"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// OpenAI contains OpenAI API configuration.
type OpenAI struct {
	// Base URL for the API.
	BaseURL string `koanf:"base_url"`
	// API key for authentication.
	APIKey string `koanf:"api_key"`
	// Maximum concurrent requests.
	MaxConcurrent int64 `koanf:"max_concurrent"`
	// Model name mappings.
	ModelMappings map[string]string `koanf:"model_mappings"`
	// Model to use for conversational replies.
	ChatModel string `koanf:"chat_model"`
	// Model to use for safety classification.
	ClassifierModel string `koanf:"classifier_model"`
	// Model to use for crisis categorization of moderated content.
	CategoryModel string `koanf:"category_model"`
	// Sampling temperature for conversational replies.
	ChatTemperature float64 `koanf:"chat_temperature"`
	// Token budget for conversational replies.
	ChatMaxTokens int `koanf:"chat_max_tokens"`
	// Number of recent conversation turns included in the reply prompt.
	HistoryLimit int `koanf:"history_limit"`
	// Optional file overriding the built-in system prompt.
	SystemPromptFile string `koanf:"system_prompt_file"`
}

// Detection contains safety classifier thresholds.
type Detection struct {
	// Minimum confidence for abuse disclosures (inclusive). Deliberately
	// lower than the default: under-flagging abuse is costlier than
	// over-flagging it.
	AbuseThreshold float64 `koanf:"abuse_threshold"`
	// Minimum confidence for all other concern types (exclusive).
	DefaultThreshold float64 `koanf:"default_threshold"`
	// Confidence recorded for pattern-detector flags.
	PatternConfidence float64 `koanf:"pattern_confidence"`
}

// Guardrails contains response shape constraints.
type Guardrails struct {
	// Maximum words per reply.
	MaxWords int `koanf:"max_words"`
	// Maximum sentences per reply.
	MaxSentences int `koanf:"max_sentences"`
	// Whether replies must end with a follow-up question.
	RequireQuestion bool `koanf:"require_question"`
	// Maximum regeneration attempts for non-compliant replies.
	MaxRetries int `koanf:"max_retries"`
	// Sampling temperature for the first regeneration attempt.
	RetryTemperature float64 `koanf:"retry_temperature"`
	// Temperature reduction per subsequent attempt.
	TemperatureDecrement float64 `koanf:"temperature_decrement"`
}

// FlagPolicy contains account restriction thresholds.
type FlagPolicy struct {
	// Flag count at which an account is restricted.
	MaxFlags int `koanf:"max_flags"`
	// Trailing window in days over which flags are counted.
	WindowDays int `koanf:"window_days"`
}

// Moderation contains vendor moderation configuration.
type Moderation struct {
	// Vendor categories that force a flag even when the vendor's own
	// top-level flag bit is unset.
	HighRiskCategories []string `koanf:"high_risk_categories"`
}

// RateLimit contains sliding-window rate limit configuration.
type RateLimit struct {
	// Maximum requests per window per account.
	Requests int `koanf:"requests"`
	// Window length in minutes.
	WindowMinutes int `koanf:"window_minutes"`
}

// Session contains conversation session storage configuration.
type Session struct {
	// Session expiry in minutes, refreshed on each turn.
	TTLMinutes int `koanf:"ttl_minutes"`
	// Maximum turns retained per session.
	MaxTurns int `koanf:"max_turns"`
}

// LoadConfig loads the configuration from the specified file.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		".mindmitra",
		homeDir + "/.mindmitra/config",
		"/etc/mindmitra/config",
		"/app/config",
		"config",
		".",
	}

	var usedConfigPath string

	configFiles := []string{"common", "server", "worker"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("server", config.Server.Version, CurrentServerVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("worker", config.Worker.Version, CurrentWorkerVersion); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf("%w: %s.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch, name, current, expected)
	}

	return nil
}
