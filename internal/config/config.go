package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Providers ProvidersConfig
	HOS       HOSConfig
	Alerting  AlertingConfig
	MQTT      MQTTConfig
	Ingest    IngestConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
}

// ProvidersConfig holds the per-vendor webhook signing secrets. An empty
// secret disables verification for that provider (degrade-open during
// onboarding; the verifier logs a warning on every unverified delivery).
type ProvidersConfig struct {
	SamsaraSecret string
	GeotabSecret  string
	MotiveSecret  string
}

// HOSConfig controls the hours-of-service rule set. CycleDays selects the
// multi-day cumulative cap: 7 (60-hour) or 8 (70-hour).
type HOSConfig struct {
	CycleDays     int
	CycleMaxHours float64
}

type AlertingConfig struct {
	URL     string
	Timeout time.Duration
}

type MQTTConfig struct {
	Broker        string
	ClientID      string
	Username      string
	Password      string
	LocationTopic string
	QoS           int
}

// IngestConfig bounds per-request work on the ingestion path.
type IngestConfig struct {
	LocationBatchSize int
	WorkerCount       int
	BufferSize        int
	FlushInterval     time.Duration
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	viper.SetDefault("HOS_CYCLE_DAYS", 8)
	viper.SetDefault("HOS_CYCLE_MAX_HOURS", 70.0)
	viper.SetDefault("INGEST_LOCATION_BATCH_SIZE", 100)
	viper.SetDefault("INGEST_WORKER_COUNT", 4)
	viper.SetDefault("INGEST_BUFFER_SIZE", 1000)
	viper.SetDefault("INGEST_FLUSH_INTERVAL_SEC", 5)
	viper.SetDefault("ALERTING_TIMEOUT_SEC", 5)
	viper.SetDefault("MQTT_QOS", 1)

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Providers: ProvidersConfig{
			SamsaraSecret: viper.GetString("SAMSARA_WEBHOOK_SECRET"),
			GeotabSecret:  viper.GetString("GEOTAB_WEBHOOK_SECRET"),
			MotiveSecret:  viper.GetString("MOTIVE_WEBHOOK_SECRET"),
		},
		HOS: HOSConfig{
			CycleDays:     viper.GetInt("HOS_CYCLE_DAYS"),
			CycleMaxHours: viper.GetFloat64("HOS_CYCLE_MAX_HOURS"),
		},
		Alerting: AlertingConfig{
			URL:     viper.GetString("ALERTING_URL"),
			Timeout: time.Duration(viper.GetInt("ALERTING_TIMEOUT_SEC")) * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:        viper.GetString("MQTT_BROKER"),
			ClientID:      viper.GetString("MQTT_CLIENT_ID"),
			Username:      viper.GetString("MQTT_USERNAME"),
			Password:      viper.GetString("MQTT_PASSWORD"),
			LocationTopic: viper.GetString("MQTT_LOCATION_TOPIC"),
			QoS:           viper.GetInt("MQTT_QOS"),
		},
		Ingest: IngestConfig{
			LocationBatchSize: viper.GetInt("INGEST_LOCATION_BATCH_SIZE"),
			WorkerCount:       viper.GetInt("INGEST_WORKER_COUNT"),
			BufferSize:        viper.GetInt("INGEST_BUFFER_SIZE"),
			FlushInterval:     time.Duration(viper.GetInt("INGEST_FLUSH_INTERVAL_SEC")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
