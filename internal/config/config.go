package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Statement StatementConfig
	Metrics   MetricsConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxUploadBytes caps the request body, file and form fields together.
	MaxUploadBytes int
	AllowOrigins   string
}

type StatementConfig struct {
	// Currency is the ISO-4217 code amounts are rounded for.
	Currency string
	// PdftotextFallback enables the external pdftotext reader for PDFs the
	// built-in reader cannot decrypt or decode.
	PdftotextFallback bool
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads the first .env file found, then the environment. A missing .env
// is not an error; malformed numbers and booleans are.
func Load() (*Config, error) {
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, err := getEnvAsInt("SERVER_READ_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := getEnvAsInt("SERVER_WRITE_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	maxUploadMB, err := getEnvAsInt("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", maxUploadMB)
	}
	fallback, err := getEnvAsBool("PDFTOTEXT_FALLBACK", false)
	if err != nil {
		return nil, err
	}
	metricsEnabled, err := getEnvAsBool("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8000"),
			ReadTimeout:    time.Duration(readTimeout) * time.Second,
			WriteTimeout:   time.Duration(writeTimeout) * time.Second,
			MaxUploadBytes: maxUploadMB << 20,
			AllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Statement: StatementConfig{
			Currency:          strings.ToUpper(getEnv("STATEMENT_CURRENCY", "INR")),
			PdftotextFallback: fallback,
		},
		Metrics: MetricsConfig{
			Enabled: metricsEnabled,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected an integer", key, valueStr)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: expected true or false", key, valueStr)
	}
	return value, nil
}
