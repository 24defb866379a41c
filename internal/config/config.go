package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Trends   Trends   `mapstructure:"trends"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Database Database `mapstructure:"database"`
	Server   Server   `mapstructure:"server"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug bool   `mapstructure:"debug"`
	Name  string `mapstructure:"name"`
}

// AI holds AI/LLM configuration
type AI struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// Trends holds search-trends provider configuration
type Trends struct {
	Provider    string        `mapstructure:"provider"`
	WindowStart string        `mapstructure:"window_start"`
	WindowEnd   string        `mapstructure:"window_end"`
	Geo         string        `mapstructure:"geo"`
	Language    string        `mapstructure:"language"`
	SerpAPI     SerpAPIConfig `mapstructure:"serpapi"`
}

// SerpAPIConfig holds SerpAPI configuration
type SerpAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Pipeline holds timeouts and retry policy for the ideation pipeline
type Pipeline struct {
	LLMTimeout       string `mapstructure:"llm_timeout"`
	TrendsTimeout    string `mapstructure:"trends_timeout"`
	MaxRetries       int    `mapstructure:"max_retries"`
	RetryDelay       string `mapstructure:"retry_delay"`
	TrendConcurrency int    `mapstructure:"trend_concurrency"`
}

// Database holds persistence configuration
type Database struct {
	Driver           string `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`
	MaxOpenConns     int    `mapstructure:"max_open_conns"`
	MaxIdleConns     int    `mapstructure:"max_idle_conns"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	CORSEnabled     bool     `mapstructure:"cors_enabled"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimit       int      `mapstructure:"rate_limit"`
	// APIKeys maps an API key to the user id it authenticates, written as "user:key" pairs.
	APIKeys []string `mapstructure:"api_keys"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".blogforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.name", "blogforge")

	// AI defaults
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.max_tokens", 8192)

	// Trends defaults
	viper.SetDefault("trends.provider", "googletrends")
	viper.SetDefault("trends.window_start", "2023-01-01")
	viper.SetDefault("trends.window_end", "2024-01-01")
	viper.SetDefault("trends.geo", "")
	viper.SetDefault("trends.language", "en-US")

	// Pipeline defaults
	viper.SetDefault("pipeline.llm_timeout", "60s")
	viper.SetDefault("pipeline.trends_timeout", "20s")
	viper.SetDefault("pipeline.max_retries", 2)
	viper.SetDefault("pipeline.retry_delay", "2s")
	viper.SetDefault("pipeline.trend_concurrency", 8)

	// Database defaults
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "180s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.cors_enabled", true)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.rate_limit", 60)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.provider", []string{
		"AI_PROVIDER",
		"LLM_PROVIDER",
	})

	bindEnvKeys("trends.serpapi.api_key", []string{
		"SERPAPI_API_KEY",
		"SERPAPI_KEY",
	})

	bindEnvKeys("trends.provider", []string{
		"TRENDS_PROVIDER",
	})

	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	bindEnvKeys("database.driver", []string{
		"DATABASE_DRIVER",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"BLOGFORGE_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Trends.Provider = strings.ToLower(strings.TrimSpace(config.Trends.Provider))
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))

	durations := map[string]string{
		"pipeline.llm_timeout":    config.Pipeline.LLMTimeout,
		"pipeline.trends_timeout": config.Pipeline.TrendsTimeout,
		"pipeline.retry_delay":    config.Pipeline.RetryDelay,
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	dates := map[string]string{
		"trends.window_start": config.Trends.WindowStart,
		"trends.window_end":   config.Trends.WindowEnd,
	}
	for key, date := range dates {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return fmt.Errorf("invalid date for %s: %s", key, date)
		}
	}

	return nil
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "gemini":
		if !isValidAPIKey(config.AI.Gemini.APIKey) {
			errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://aistudio.google.com/app/apikey")
		}
	case "openai":
		if !isValidAPIKey(config.AI.OpenAI.APIKey) {
			errors = append(errors, "OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: gemini, openai", config.AI.Provider))
	}

	switch config.Trends.Provider {
	case "serpapi":
		if !isValidAPIKey(config.Trends.SerpAPI.APIKey) {
			errors = append(errors, "SerpAPI trends provider requires API key. Set SERPAPI_API_KEY environment variable")
		}
	case "googletrends", "mock":
	default:
		errors = append(errors, fmt.Sprintf("Unknown trends provider: %s. Supported: googletrends, serpapi, mock", config.Trends.Provider))
	}

	switch config.Database.Driver {
	case "postgres", "sqlite3":
		if config.Database.ConnectionString == "" {
			errors = append(errors, fmt.Sprintf("Database driver %s requires a connection string. Set DATABASE_URL or database.connection_string", config.Database.Driver))
		}
	case "memory":
	default:
		errors = append(errors, fmt.Sprintf("Unknown database driver: %s. Supported: postgres, sqlite3, memory", config.Database.Driver))
	}

	if config.Pipeline.MaxRetries < 0 {
		errors = append(errors, "pipeline.max_retries must not be negative")
	}
	if config.Pipeline.TrendConcurrency < 1 {
		errors = append(errors, "pipeline.trend_concurrency must be at least 1")
	}

	for _, pair := range config.Server.APIKeys {
		if user, key, ok := strings.Cut(pair, ":"); !ok || user == "" || key == "" {
			errors = append(errors, fmt.Sprintf("server.api_keys entry %q must be in user:key form", pair))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App           { return Get().App }
func GetAI() AI             { return Get().AI }
func GetTrends() Trends     { return Get().Trends }
func GetPipeline() Pipeline { return Get().Pipeline }
func GetDatabase() Database { return Get().Database }
func GetServer() Server     { return Get().Server }
func GetLogging() Logging   { return Get().Logging }
func IsDebugMode() bool     { return Get().App.Debug }

// Duration parses a duration that postProcessConfig already validated,
// returning fallback when the value is empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Window returns the fixed historical window used for interest-over-time lookups.
func (t Trends) Window() (time.Time, time.Time) {
	start, _ := time.Parse(time.DateOnly, t.WindowStart)
	end, _ := time.Parse(time.DateOnly, t.WindowEnd)
	return start, end
}

// APIKeyUsers parses server.api_keys into a key -> user id lookup.
func (s Server) APIKeyUsers() map[string]string {
	users := make(map[string]string, len(s.APIKeys))
	for _, pair := range s.APIKeys {
		if user, key, ok := strings.Cut(pair, ":"); ok {
			users[strings.TrimSpace(key)] = strings.TrimSpace(user)
		}
	}
	return users
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-key", "your-serpapi-key",
		"your-openai-key", "YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
