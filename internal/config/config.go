package config

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/yingtu-pmc/analyzer-go/internal/engine"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	Cache   CacheConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	InputDir          string
	ReportDir         string
	LogLevel          string
	ReportingCurrency string
	// CurrencyRates is the raw rate override string, e.g. "USD=7.20,HKD=0.93".
	CurrencyRates string
	MaxJoinRows   int
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ResultTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_INPUT_DIR", "./data/input")
		viper.SetDefault("APP_REPORT_DIR", "./data/reports")
		viper.SetDefault("APP_LOG_LEVEL", "info")
		viper.SetDefault("APP_REPORTING_CURRENCY", "RMB")
		viper.SetDefault("APP_CURRENCY_RATES", "")
		viper.SetDefault("APP_MAX_JOIN_ROWS", 0)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_RESULT_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "pmc-analysis")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure input and report directories exist
		ensureDir(viper.GetString("APP_INPUT_DIR"))
		ensureDir(viper.GetString("APP_REPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			App: AppConfig{
				InputDir:          viper.GetString("APP_INPUT_DIR"),
				ReportDir:         viper.GetString("APP_REPORT_DIR"),
				LogLevel:          viper.GetString("APP_LOG_LEVEL"),
				ReportingCurrency: viper.GetString("APP_REPORTING_CURRENCY"),
				CurrencyRates:     viper.GetString("APP_CURRENCY_RATES"),
				MaxJoinRows:       viper.GetInt("APP_MAX_JOIN_ROWS"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ResultTTLSeconds: viper.GetInt("CACHE_RESULT_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
		}
	})

	return instance
}

// EngineConfig builds the analysis run configuration from the loaded app
// settings, starting from the built-in defaults.
func (c *Config) EngineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()

	if c.App.ReportingCurrency != "" {
		cfg.ReportingCurrency = c.App.ReportingCurrency
	}
	if c.App.MaxJoinRows > 0 {
		cfg.MaxJoinRows = c.App.MaxJoinRows
	}
	if c.App.CurrencyRates != "" {
		rates, err := parseRates(c.App.CurrencyRates)
		if err != nil {
			return engine.Config{}, err
		}
		for code, rate := range rates {
			cfg.Rates[code] = rate
		}
	}

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

// parseRates reads a "USD=7.20,HKD=0.93" style override string.
func parseRates(raw string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, &engine.ConfigurationError{Reason: "malformed currency rate entry " + pair}
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, &engine.ConfigurationError{Reason: "bad rate value for " + code + ": " + err.Error()}
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
