package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	App           AppConfig
	API           APIConfig
	DemoServer    DemoServerConfig
	Discovery     DiscoveryConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type AppConfig struct {
	Env      string
	DemoMode bool
}

// APIConfig points the engine at the backend it consumes.
type APIConfig struct {
	BaseURL        string
	AuthToken      string
	TimeoutSeconds int
}

type DemoServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
	JWTSecret      string
	JWTIssuer      string
	SessionTTL     int // hours
}

type DiscoveryConfig struct {
	SwipeThresholdPx    float64
	PrefsCacheTTL       int // seconds
	VisitRetentionHours int // demo server visit TTL
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("DEMO_MODE", false)
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("PORT", "8000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://educlove.fr,https://www.educlove.fr")
	v.SetDefault("JWT_ISSUER", "educlove-demo")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("SWIPE_THRESHOLD_PX", 50)
	v.SetDefault("PREFS_CACHE_TTL", 600)
	v.SetDefault("VISIT_RETENTION_HOURS", 30*24) // original backend keeps visits for 30 days
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_SERVICE_NAME", "discovery-engine")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "educlove")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "discovery-engine")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			DemoMode: v.GetBool("DEMO_MODE"),
		},
		API: APIConfig{
			BaseURL:        v.GetString("API_BASE_URL"),
			AuthToken:      v.GetString("API_AUTH_TOKEN"),
			TimeoutSeconds: v.GetInt("HTTP_TIMEOUT_SECONDS"),
		},
		DemoServer: DemoServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AllowedOrigins: allowedOrigins,
			JWTSecret:      v.GetString("JWT_SECRET"),
			JWTIssuer:      v.GetString("JWT_ISSUER"),
			SessionTTL:     v.GetInt("SESSION_TTL_HOURS"),
		},
		Discovery: DiscoveryConfig{
			SwipeThresholdPx:    v.GetFloat64("SWIPE_THRESHOLD_PX"),
			PrefsCacheTTL:       v.GetInt("PREFS_CACHE_TTL"),
			VisitRetentionHours: v.GetInt("VISIT_RETENTION_HOURS"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if !c.App.DemoMode && c.API.AuthToken == "" {
		return fmt.Errorf("API_AUTH_TOKEN is required when not in demo mode")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.DemoServer.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Discovery.SwipeThresholdPx <= 0 {
		return fmt.Errorf("SWIPE_THRESHOLD_PX must be positive")
	}
	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development" || c.DemoServer.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
