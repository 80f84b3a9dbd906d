package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type SecurityConfig struct {
	JWTSecret string
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	// Topics carrying POS lifecycle events that the floor plan folds into
	// table statuses.
	OrderTopics       []string
	ReservationTopics []string
}

type MySQLConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RepositoryConfig struct {
	// Driver selects the backing store: "memory" or "mysql".
	Driver string
	MySQL  MySQLConfig
}

type CanvasConfig struct {
	Width  float64
	Height float64
}

type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Security   SecurityConfig
	Kafka      KafkaConfig
	Repository RepositoryConfig
	Canvas     CanvasConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getenv("PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level:     getenv("LOG_LEVEL", "info"),
			Format:    getenv("LOG_FORMAT", "json"),
			Directory: getenv("LOG_DIR", "./logs"),
		},
		Security: SecurityConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Kafka: KafkaConfig{
			Brokers:           getenvList("KAFKA_BROKERS", "KAFKA_BROKER"),
			GroupID:           getenv("KAFKA_GROUP_ID", "mesaplan"),
			OrderTopics:       splitList(getenv("KAFKA_ORDER_TOPICS", "order.opened,order.closed,order.paid")),
			ReservationTopics: splitList(getenv("KAFKA_RESERVATION_TOPICS", "reservation.created,reservation.cancelled")),
		},
		Repository: RepositoryConfig{
			Driver: strings.ToLower(getenv("REPOSITORY_DRIVER", "memory")),
			MySQL: MySQLConfig{
				Host:     getenv("DB_HOST", "127.0.0.1"),
				Port:     getenv("DB_PORT", "3306"),
				User:     getenv("DB_USER", "root"),
				Password: os.Getenv("DB_PASSWORD"),
				DBName:   getenv("DB_NAME", "mesaplan"),
			},
		},
		Canvas: CanvasConfig{
			Width:  getenvFloat("CANVAS_WIDTH", 800),
			Height: getenvFloat("CANVAS_HEIGHT", 600),
		},
	}

	switch cfg.Repository.Driver {
	case "memory", "mysql":
	default:
		return nil, fmt.Errorf("unknown REPOSITORY_DRIVER %q", cfg.Repository.Driver)
	}
	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		return nil, fmt.Errorf("canvas dimensions must be positive")
	}
	return cfg, nil
}

// KafkaEnabled reports whether any broker address was configured. Local
// runs without a broker simply skip the consumer group.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func (c *Config) KafkaTopics() []string {
	topics := make([]string, 0, len(c.Kafka.OrderTopics)+len(c.Kafka.ReservationTopics))
	topics = append(topics, c.Kafka.OrderTopics...)
	topics = append(topics, c.Kafka.ReservationTopics...)
	return topics
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// getenvList reads the first non-empty variable from keys and splits it on
// commas. Both KAFKA_BROKERS and the legacy singular KAFKA_BROKER are
// honoured.
func getenvList(keys ...string) []string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return splitList(v)
		}
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci&multiStatements=true",
		c.User, c.Password, c.Host, c.Port, c.DBName,
	)
}
