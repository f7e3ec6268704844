package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Grpc          GrpcConfig          `mapstructure:"grpc"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Mail          MailConfig          `mapstructure:"mail"`
	Recovery      RecoveryConfig      `mapstructure:"recovery"`
	Janitor       JanitorConfig       `mapstructure:"janitor"`
	Announcements AnnouncementsConfig `mapstructure:"announcements"`
	Telemetry     TelemetryConfig     `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type GrpcConfig struct {
	Port string `mapstructure:"port"`
}

// NATSConfig drives session revocation fan-out. Empty URL disables it.
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// KafkaConfig drives the change feed. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type MailConfig struct {
	Provider       string `mapstructure:"provider"` // sendgrid | console
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromName       string `mapstructure:"from_name"`
	FromEmail      string `mapstructure:"from_email"`
}

type RecoveryConfig struct {
	CodeTTL    time.Duration `mapstructure:"code_ttl"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type JanitorConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type AnnouncementsConfig struct {
	// FeedScope is "owner" (default) or "all"
	FeedScope string `mapstructure:"feed_scope"`
}

type TelemetryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Interval time.Duration `mapstructure:"interval"`
}

// Load reads config.<ENV>.yaml (optional) and overlays environment variables.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}
	return load(env, "/configs", "./configs", "../configs", "../../configs")
}

func load(env string, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v, env)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file is optional - continue with ENV variables
		fmt.Printf("No config file found (will use ENV variables): %v\n", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("mail.sendgrid_api_key", "SENDGRID_API_KEY")
	_ = v.BindEnv("nats.url", "NATS_URL")
	_ = v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		config.Kafka.Brokers = strings.Split(brokers, ",")
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("env", env)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "institute")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("jwt.issuer", "institute-service")
	v.SetDefault("jwt.access_token_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("grpc.port", "9090")
	v.SetDefault("nats.subject", "auth.session.ended")
	v.SetDefault("kafka.topic", "institute.changes")
	v.SetDefault("mail.provider", "console")
	v.SetDefault("mail.from_name", "Institute")
	v.SetDefault("mail.from_email", "no-reply@institute.local")
	v.SetDefault("recovery.code_ttl", 10*time.Minute)
	v.SetDefault("recovery.session_ttl", 10*time.Minute)
	v.SetDefault("janitor.enabled", true)
	v.SetDefault("janitor.schedule", "@every 15m")
	v.SetDefault("announcements.feed_scope", "owner")
	v.SetDefault("telemetry.interval", 10*time.Second)
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret (JWT_SECRET) is required")
	}
	switch c.Announcements.FeedScope {
	case "owner", "all":
	default:
		return fmt.Errorf("announcements.feed_scope must be owner or all, got %q", c.Announcements.FeedScope)
	}
	switch c.Mail.Provider {
	case "console":
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("mail.sendgrid_api_key (SENDGRID_API_KEY) is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("unknown mail.provider %q", c.Mail.Provider)
	}
	return nil
}
