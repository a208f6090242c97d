package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	App      AppConfig
	Log      LogConfig
	DB       DBConfig
	Redis    RedisConfig
	GRPC     GRPCConfig
	Metrics  MetricsConfig
	Kafka    KafkaConfig
	Store    StoreConfig
	Messages MessagesConfig
	Links    LinksConfig
}

type AppConfig struct {
	ENV string `env:"APP_ENV,default=production"`
}

type LogConfig struct {
	Level     string `env:"LOG_LEVEL,default=info"`
	Format    string `env:"LOG_FORMAT,default=text"`
	Component string `env:"LOG_COMPONENT,default=homies_server"`
	Source    bool   `env:"LOG_SOURCE,default=false"`
}

// DBConfig selects the gorm driver. DSN wins when set; otherwise it is
// assembled from the individual fields.
type DBConfig struct {
	Driver   string `env:"DB_DRIVER,default=mysql"`
	DSN      string `env:"DB_DSN"`
	Host     string `env:"DB_HOST,default=localhost"`
	Port     string `env:"DB_PORT,default=3306"`
	User     string `env:"DB_USER,default=root"`
	Password string `env:"DB_PASSWORD,default=root"`
	Name     string `env:"DB_NAME,default=homies"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,default=0"`
}

type GRPCConfig struct {
	Host string `env:"GRPC_HOST,default=127.0.0.1"`
	Port string `env:"GRPC_PORT,default=50051"`
}

// MetricsConfig: an empty Addr disables the /metrics listener.
type MetricsConfig struct {
	Addr string `env:"METRICS_ADDR"`
}

// KafkaConfig: no brokers means events are dropped.
type KafkaConfig struct {
	Brokers  []string `env:"KAFKA_BROKERS"`
	ClientID string   `env:"KAFKA_CLIENT_ID,default=homies"`
	Topic    string   `env:"KAFKA_TOPIC,default=homies-connections"`

	// PublishTimeout bounds the wait for one delivery report.
	PublishTimeout time.Duration `env:"KAFKA_PUBLISH_TIMEOUT,default=5s"`
	// MessageTimeout is librdkafka's message.timeout.ms; zero keeps its default.
	MessageTimeout time.Duration `env:"KAFKA_MESSAGE_TIMEOUT"`
}

type StoreConfig struct {
	Timeout time.Duration `env:"STORE_TIMEOUT,default=3s"`
}

type MessagesConfig struct {
	MaxLength int `env:"MESSAGE_MAX_LENGTH,default=500"`
}

type LinksConfig struct {
	PageSize int `env:"LINKS_PAGE_SIZE,default=20"`
}

// Load reads the configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	cfg.DB.DSN = cfg.DB.dsn()
	return cfg, nil
}

// New is Load for main packages: a broken environment is fatal.
func New() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// IsDevelopment reports whether demo data may be seeded on boot.
func (c *Config) IsDevelopment() bool {
	return c.App.ENV == "development"
}

func (d DBConfig) dsn() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		return fmt.Sprintf("file:%s.db?_foreign_keys=on", d.Name)
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}
