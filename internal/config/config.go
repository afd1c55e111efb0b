// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env     string `mapstructure:"APP_ENV"`
	AppName string `mapstructure:"APP_NAME"`
	Host    string `mapstructure:"APP_HOST"`
	Port    string `mapstructure:"PORT"`

	// Record store (PostgreSQL through GORM).
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	DBMaxOpenConns           int `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Cache and ranking store.
	RedisHost     string        `mapstructure:"REDIS_HOST"`
	RedisPort     int           `mapstructure:"REDIS_PORT"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	PostCacheTTL  time.Duration `mapstructure:"POST_CACHE_TTL"`

	// Event log (Cassandra).
	CassandraContactPoints     string        `mapstructure:"CASSANDRA_CONTACT_POINTS"`
	CassandraKeyspace          string        `mapstructure:"CASSANDRA_KEYSPACE"`
	CassandraReplicationFactor int           `mapstructure:"CASSANDRA_REPLICATION_FACTOR"`
	CassandraConnectTimeout    time.Duration `mapstructure:"CASSANDRA_CONNECT_TIMEOUT"`

	// Graph store (Neo4j).
	Neo4jURI            string        `mapstructure:"NEO4J_URI"`
	Neo4jUser           string        `mapstructure:"NEO4J_USER"`
	Neo4jPassword       string        `mapstructure:"NEO4J_PASSWORD"`
	Neo4jDatabase       string        `mapstructure:"NEO4J_DATABASE"`
	Neo4jConnectRetries int           `mapstructure:"NEO4J_CONNECT_RETRIES"`
	Neo4jRetryDelay     time.Duration `mapstructure:"NEO4J_RETRY_DELAY"`

	StoreOpTimeout     time.Duration `mapstructure:"STORE_OP_TIMEOUT"`
	RateLimitPerMinute int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults target a local development stack.
func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_NAME", "socialmesh")
	viper.SetDefault("APP_HOST", "0.0.0.0")
	viper.SetDefault("PORT", "5000")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "social_media")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("POST_CACHE_TTL", "1h")

	viper.SetDefault("CASSANDRA_CONTACT_POINTS", "127.0.0.1")
	viper.SetDefault("CASSANDRA_KEYSPACE", "social_media_analytics")
	viper.SetDefault("CASSANDRA_REPLICATION_FACTOR", 1)
	viper.SetDefault("CASSANDRA_CONNECT_TIMEOUT", "10s")

	viper.SetDefault("NEO4J_URI", "bolt://localhost:7687")
	viper.SetDefault("NEO4J_USER", "neo4j")
	viper.SetDefault("NEO4J_PASSWORD", "neo4j")
	viper.SetDefault("NEO4J_DATABASE", "neo4j")
	viper.SetDefault("NEO4J_CONNECT_RETRIES", 5)
	viper.SetDefault("NEO4J_RETRY_DELAY", "3s")

	viper.SetDefault("STORE_OP_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 600)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DBName == "" {
		return errors.New("DB_NAME is required")
	}
	if len(c.ContactPoints()) == 0 {
		return errors.New("CASSANDRA_CONTACT_POINTS is required")
	}
	if c.CassandraKeyspace == "" {
		return errors.New("CASSANDRA_KEYSPACE is required")
	}
	if !isIdentifier(c.CassandraKeyspace) {
		return fmt.Errorf("CASSANDRA_KEYSPACE %q must contain only letters, digits and underscores", c.CassandraKeyspace)
	}
	if c.CassandraReplicationFactor < 1 {
		return errors.New("CASSANDRA_REPLICATION_FACTOR must be at least 1")
	}
	if c.Neo4jURI == "" {
		return errors.New("NEO4J_URI is required")
	}
	if c.Neo4jConnectRetries < 1 {
		return errors.New("NEO4J_CONNECT_RETRIES must be at least 1")
	}
	if c.PostCacheTTL <= 0 {
		return errors.New("POST_CACHE_TTL must be positive")
	}
	if c.StoreOpTimeout <= 0 {
		return errors.New("STORE_OP_TIMEOUT must be positive")
	}

	if c.IsProduction() {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.Neo4jPassword == "neo4j" {
			return errors.New("NEO4J_PASSWORD must be changed from the default value in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	}

	return nil
}

// IsProduction reports whether APP_ENV names a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

// RedisAddr is the host:port of the cache store.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// ContactPoints splits CASSANDRA_CONTACT_POINTS on commas.
func (c *Config) ContactPoints() []string {
	var hosts []string
	for _, h := range strings.Split(c.CassandraContactPoints, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func isIdentifier(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return s != ""
}
