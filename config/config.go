package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq key=value connection string.
func (c DBConfig) DSN() string {
	return "host=" + c.Host + " port=" + c.Port + " user=" + c.User +
		" password=" + c.Password + " dbname=" + c.Name + " sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	Level string
}

type AuthConfig struct {
	JWTSecret string
}

// TenancyConfig controls how request hosts map to restaurants and how QR
// links are built.
type TenancyConfig struct {
	RootDomain         string
	ExcludedSubdomains []string
	FrontendScheme     string
	FrontendBase       string
}

type PricingConfig struct {
	TaxRate decimal.Decimal
}

type MailConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	// PerMinute caps outbound mail; zero disables the limit.
	PerMinute int
}

type CacheConfig struct {
	MenuTTL       time.Duration
	SubmissionTTL time.Duration
}

type RateLimitConfig struct {
	Rate string
	// TrustForwardHeader is only safe behind the gateway.
	TrustForwardHeader bool
}

type Config struct {
	ServiceName string
	DB          DBConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Server      ServerConfig
	Log         LogConfig
	Auth        AuthConfig
	Tenancy     TenancyConfig
	Pricing     PricingConfig
	Mail        MailConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
}

// Load reads an optional .env file and then the environment. Every key has a
// default so a service can boot against a local docker-compose stack.
func Load(serviceName string) *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using environment variables")
	}

	return &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "opendfood"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKER", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_ORDERS_TOPIC", "orders"),
			GroupID: getEnv("KAFKA_GROUP_ID", serviceName),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me"),
		},
		Tenancy: TenancyConfig{
			RootDomain:         getEnv("ROOT_DOMAIN", ""),
			ExcludedSubdomains: getEnvAsList("EXCLUDED_SUBDOMAINS", []string{"www"}),
			FrontendScheme:     getEnv("FRONTEND_SCHEME", "https"),
			FrontendBase:       getEnv("FRONTEND_BASE_URL", "localhost"),
		},
		Pricing: PricingConfig{
			TaxRate: getEnvAsDecimal("TAX_RATE", decimal.RequireFromString("0.10")),
		},
		Mail: MailConfig{
			Host:      getEnv("SMTP_HOST", "localhost"),
			Port:      getEnv("SMTP_PORT", "1025"),
			User:      getEnv("SMTP_USER", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			From:      getEnv("MAIL_FROM", "orders@opendfood.local"),
			PerMinute: getEnvAsInt("MAIL_PER_MINUTE", 60),
		},
		Cache: CacheConfig{
			MenuTTL:       getEnvAsDuration("MENU_CACHE_TTL", 5*time.Minute),
			SubmissionTTL: getEnvAsDuration("SUBMISSION_GUARD_TTL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Rate:               getEnv("RATE_LIMIT", "30-M"),
			TrustForwardHeader: getEnvAsBool("RATE_LIMIT_TRUST_PROXY", false),
		},
	}
}

// Fields returns the non-secret parts of the configuration for startup logs.
func (c *Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.Name),
		zap.String("redis_addr", c.Redis.Addr()),
		zap.Strings("kafka_brokers", c.Kafka.Brokers),
		zap.String("server_port", c.Server.Port),
	}
}

func MustInitPostgres(cfg DBConfig) *sql.DB {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		zap.L().Fatal("failed to open database", zap.Error(err))
	}

	if err = db.Ping(); err != nil {
		zap.L().Fatal("failed to ping database", zap.Error(err))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db
}

func MustInitRedis(cfg RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		zap.L().Fatal("failed to connect to redis", zap.Error(err))
	}

	return client
}

func NewKafkaReader(cfg KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
}

func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value, err := decimal.NewFromString(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
