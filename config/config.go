package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Cafe     CafeConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

// CafeConfig carries the business knobs of one café instance.
type CafeConfig struct {
	ClubID              string
	MaxItemsPerOrder    int
	MaxOverdraft        float64 // zero or negative floor
	SalesCacheTTLSecs   int
	SnapshotDebounceMs  int
	FailOpenWithoutClub bool
	BlockUnhealthy      bool
	MaxUnhealthyPerDay  int // -1 = no cap
	MaxUnhealthyPerItem int // -1 = no cap, per product per day
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "flango"),
			Password:        getEnv("POSTGRES_PASSWORD", "flango"),
			DBName:          getEnv("POSTGRES_DB", "flango_pos"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_DEPOSITS", "deposits.events"),
			GroupID: getEnv("KAFKA_GROUP_POS", "flango-pos"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Cafe: CafeConfig{
			ClubID:              getEnv("CAFE_CLUB_ID", ""),
			MaxItemsPerOrder:    getEnvInt("CAFE_MAX_ITEMS_PER_ORDER", 10),
			MaxOverdraft:        getEnvFloat("CAFE_MAX_OVERDRAFT", -10),
			SalesCacheTTLSecs:   getEnvInt("CAFE_SALES_CACHE_TTL_SECONDS", 60),
			SnapshotDebounceMs:  getEnvInt("CAFE_SNAPSHOT_DEBOUNCE_MS", 50),
			FailOpenWithoutClub: getEnvBool("LIMITS_FAIL_OPEN_WITHOUT_CLUB", true),
			BlockUnhealthy:      getEnvBool("CAFE_BLOCK_UNHEALTHY", false),
			MaxUnhealthyPerDay:  getEnvInt("CAFE_MAX_UNHEALTHY_PER_DAY", -1),
			MaxUnhealthyPerItem: getEnvInt("CAFE_MAX_UNHEALTHY_PER_PRODUCT", -1),
		},
	}
}

// SugarPolicyEnabled reports whether any sugar rule is configured.
func (c CafeConfig) SugarPolicyEnabled() bool {
	return c.BlockUnhealthy || c.MaxUnhealthyPerDay >= 0 || c.MaxUnhealthyPerItem >= 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
