package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DatabaseURL string
	AutoMigrate bool

	Auth     AuthConfig
	Identity IdentityConfig
	Logger   LoggerConfig

	RateLimitPerMinute    int
	RateLimitBurst        int
	AppRateLimitPerMinute int
	AppRateLimitBurst     int

	TicketMaxAttempts int
	OTLPEndpoint      string
	OTLPInsecure      bool
}

type AuthConfig struct {
	AllowedAPIKeys []string
	AllowedIPs     []string
	TrustedProxies []string
}

type IdentityConfig struct {
	Mode         string
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIKey       string
	JWTSecret    string
	Timeout      time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
	Output string
	Debug  bool
}

func Load() Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IDENTITY_MODE", "remote")
	v.SetDefault("IDENTITY_TIMEOUT_SECONDS", 10)
	v.SetDefault("RATE_LIMIT_PER_MIN", 120)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("APP_RATE_LIMIT_PER_MIN", 600)
	v.SetDefault("APP_RATE_LIMIT_BURST", 120)
	v.SetDefault("TICKET_MAX_ATTEMPTS", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("AUTO_MIGRATE", false)

	dsn := v.GetString("DB_CONNECTION_STRING")
	if dsn == "" {
		dsn = v.GetString("DB_DSN")
	}

	return Config{
		Port:        v.GetString("PORT"),
		DatabaseURL: dsn,
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),
		Auth: AuthConfig{
			AllowedAPIKeys: splitList(v.GetString("AUTH_ALLOWED_API_KEYS")),
			AllowedIPs:     splitList(v.GetString("AUTH_ALLOWED_IP_ADDRESSES")),
			TrustedProxies: splitList(v.GetString("AUTH_TRUSTED_PROXIES")),
		},
		Identity: IdentityConfig{
			Mode:         strings.ToLower(v.GetString("IDENTITY_MODE")),
			BaseURL:      strings.TrimRight(v.GetString("AUTH_API_BASE_URL"), "/"),
			ClientID:     v.GetString("APP_CLIENT_ID"),
			ClientSecret: v.GetString("APP_CLIENT_SECRET"),
			APIKey:       v.GetString("IAM_API_KEY"),
			JWTSecret:    v.GetString("IDENTITY_JWT_SECRET"),
			Timeout:      readDurationSeconds(v, "IDENTITY_TIMEOUT_SECONDS"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
			Debug:  v.GetBool("DEBUG"),
		},
		RateLimitPerMinute:    v.GetInt("RATE_LIMIT_PER_MIN"),
		RateLimitBurst:        v.GetInt("RATE_LIMIT_BURST"),
		AppRateLimitPerMinute: v.GetInt("APP_RATE_LIMIT_PER_MIN"),
		AppRateLimitBurst:     v.GetInt("APP_RATE_LIMIT_BURST"),
		TicketMaxAttempts:     v.GetInt("TICKET_MAX_ATTEMPTS"),
		OTLPEndpoint:          v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:          v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
	}
}

func readDurationSeconds(v *viper.Viper, key string) time.Duration {
	value := v.GetInt(key)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
