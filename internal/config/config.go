package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string `yaml:"env"`
	HTTPAddr string `yaml:"httpAddr"`

	APIBaseURL  string        `yaml:"apiBaseUrl"`
	RealtimeURL string        `yaml:"realtimeUrl"`
	APITimeout  time.Duration `yaml:"apiTimeout"`

	RealtimeAckTimeout        time.Duration `yaml:"realtimeAckTimeout"`
	RealtimeReconnectAttempts int           `yaml:"realtimeReconnectAttempts"`
	RealtimeReconnectDelay    time.Duration `yaml:"realtimeReconnectDelay"`
	RealtimeResyncOnReconnect bool          `yaml:"realtimeResyncOnReconnect"`

	LocalStoreDriver    string        `yaml:"localStoreDriver"`
	LocalStorePath      string        `yaml:"localStorePath"`
	LocalStoreNamespace string        `yaml:"localStoreNamespace"`
	DatabaseURL         string        `yaml:"databaseUrl"`
	SessionMaxAge       time.Duration `yaml:"sessionMaxAge"`

	RabbitMQURL    string `yaml:"rabbitmqUrl"`
	EventsExchange string `yaml:"eventsExchange"`

	CorsAllowedOrigins []string      `yaml:"corsAllowedOrigins"`
	WSTickInterval     time.Duration `yaml:"wsTickInterval"`

	ObjectStoreEndpoint        string `yaml:"objectStoreEndpoint"`
	ObjectStoreRegion          string `yaml:"objectStoreRegion"`
	ObjectStoreAccessKeyID     string `yaml:"objectStoreAccessKeyId"`
	ObjectStoreSecretAccessKey string `yaml:"objectStoreSecretAccessKey"`
	ObjectStoreBucket          string `yaml:"objectStoreBucket"`
	ObjectStorePublicBaseURL   string `yaml:"objectStorePublicBaseUrl"`
}

func Load() Config {
	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8090"),

		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		RealtimeURL: getEnv("REALTIME_URL", "ws://localhost:3003/ws"),
		APITimeout:  getEnvDuration("API_TIMEOUT", 10*time.Second),

		RealtimeAckTimeout:        getEnvDuration("REALTIME_ACK_TIMEOUT", 10*time.Second),
		RealtimeReconnectAttempts: int(getEnvInt64("REALTIME_RECONNECT_ATTEMPTS", 10)),
		RealtimeReconnectDelay:    getEnvDuration("REALTIME_RECONNECT_DELAY", time.Second),
		RealtimeResyncOnReconnect: getEnvBool("REALTIME_RESYNC_ON_RECONNECT", true),

		LocalStoreDriver:    strings.ToLower(getEnv("LOCAL_STORE_DRIVER", "file")),
		LocalStorePath:      getEnv("LOCAL_STORE_PATH", "data/kiosk-store.json"),
		LocalStoreNamespace: getEnv("LOCAL_STORE_NAMESPACE", "default"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SessionMaxAge:       getEnvDuration("SESSION_MAX_AGE", 10*time.Hour),

		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "kiosk.events"),

		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		WSTickInterval:     getEnvDuration("WS_TICK_INTERVAL", time.Second),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnv("OBJECT_STORE_ENDPOINT", ""),
		ObjectStoreRegion:          getEnv("OBJECT_STORE_REGION", "auto"),
		ObjectStoreAccessKeyID:     getEnv("OBJECT_STORE_ACCESS_KEY_ID", ""),
		ObjectStoreSecretAccessKey: getEnv("OBJECT_STORE_SECRET_ACCESS_KEY", ""),
		ObjectStoreBucket:          getEnv("OBJECT_STORE_BUCKET", ""),
		ObjectStorePublicBaseURL:   getEnv("OBJECT_STORE_PUBLIC_BASE_URL", ""),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if fileCfg, err := LoadFile(path); err == nil {
			cfg = Merge(cfg, fileCfg)
		}
	}

	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 10 * time.Second
	}
	if cfg.RealtimeAckTimeout <= 0 {
		cfg.RealtimeAckTimeout = 10 * time.Second
	}
	if cfg.RealtimeReconnectAttempts < 0 {
		cfg.RealtimeReconnectAttempts = 0
	}
	if cfg.SessionMaxAge <= 0 {
		cfg.SessionMaxAge = 10 * time.Hour
	}
	if cfg.WSTickInterval <= 0 {
		cfg.WSTickInterval = time.Second
	}

	return cfg
}

// LoadFile reads a YAML overlay. Durations use Go syntax ("10s", "10h").
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge fills fields of base that were left unset by the environment with
// non-empty values from file. Environment always wins.
func Merge(base, file Config) Config {
	setString := func(dst *string, envKey string, value string) {
		if strings.TrimSpace(os.Getenv(envKey)) == "" && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	setDuration := func(dst *time.Duration, envKey string, value time.Duration) {
		if strings.TrimSpace(os.Getenv(envKey)) == "" && value > 0 {
			*dst = value
		}
	}

	setString(&base.Env, "APP_ENV", file.Env)
	setString(&base.HTTPAddr, "HTTP_ADDR", file.HTTPAddr)
	setString(&base.APIBaseURL, "API_BASE_URL", strings.TrimRight(file.APIBaseURL, "/"))
	setString(&base.RealtimeURL, "REALTIME_URL", file.RealtimeURL)
	setDuration(&base.APITimeout, "API_TIMEOUT", file.APITimeout)
	setDuration(&base.RealtimeAckTimeout, "REALTIME_ACK_TIMEOUT", file.RealtimeAckTimeout)
	setDuration(&base.RealtimeReconnectDelay, "REALTIME_RECONNECT_DELAY", file.RealtimeReconnectDelay)
	if strings.TrimSpace(os.Getenv("REALTIME_RECONNECT_ATTEMPTS")) == "" && file.RealtimeReconnectAttempts > 0 {
		base.RealtimeReconnectAttempts = file.RealtimeReconnectAttempts
	}
	setString(&base.LocalStoreDriver, "LOCAL_STORE_DRIVER", strings.ToLower(file.LocalStoreDriver))
	setString(&base.LocalStorePath, "LOCAL_STORE_PATH", file.LocalStorePath)
	setString(&base.LocalStoreNamespace, "LOCAL_STORE_NAMESPACE", file.LocalStoreNamespace)
	setString(&base.DatabaseURL, "DATABASE_URL", file.DatabaseURL)
	setDuration(&base.SessionMaxAge, "SESSION_MAX_AGE", file.SessionMaxAge)
	setString(&base.RabbitMQURL, "RABBITMQ_URL", file.RabbitMQURL)
	setString(&base.EventsExchange, "EVENTS_EXCHANGE", file.EventsExchange)
	setDuration(&base.WSTickInterval, "WS_TICK_INTERVAL", file.WSTickInterval)
	if strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")) == "" && len(file.CorsAllowedOrigins) > 0 {
		base.CorsAllowedOrigins = file.CorsAllowedOrigins
	}
	setString(&base.ObjectStoreEndpoint, "OBJECT_STORE_ENDPOINT", file.ObjectStoreEndpoint)
	setString(&base.ObjectStoreRegion, "OBJECT_STORE_REGION", file.ObjectStoreRegion)
	setString(&base.ObjectStoreAccessKeyID, "OBJECT_STORE_ACCESS_KEY_ID", file.ObjectStoreAccessKeyID)
	setString(&base.ObjectStoreSecretAccessKey, "OBJECT_STORE_SECRET_ACCESS_KEY", file.ObjectStoreSecretAccessKey)
	setString(&base.ObjectStoreBucket, "OBJECT_STORE_BUCKET", file.ObjectStoreBucket)
	setString(&base.ObjectStorePublicBaseURL, "OBJECT_STORE_PUBLIC_BASE_URL", file.ObjectStorePublicBaseURL)
	return base
}

// ObjectStoreEnabled reports whether receipts should be uploaded. The public
// base URL is optional.
func (c Config) ObjectStoreEnabled() bool {
	return c.ObjectStoreEndpoint != "" && c.ObjectStoreBucket != ""
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
