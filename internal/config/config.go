package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `env:",prefix=SERVER_"`

	// Database configuration
	Database DatabaseConfig `env:",prefix=DB_"`

	// NATS custody-bus configuration
	NATS NATSConfig `env:",prefix=NATS_"`

	// Redis campaign-cache configuration
	Redis RedisConfig `env:",prefix=REDIS_"`

	// Custody boundary configuration
	Custody CustodyConfig `env:",prefix=CUSTODY_"`

	// Application configuration
	App AppConfig `env:",prefix=APP_"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string `env:"PORT,default=8080"`
	Host         string `env:"HOST,default=0.0.0.0"`
	ReadTimeout  int    `env:"READ_TIMEOUT,default=30"`  // seconds
	WriteTimeout int    `env:"WRITE_TIMEOUT,default=30"` // seconds
	AdminToken   string `env:"ADMIN_TOKEN"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"NAME,default=stakevault"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
	MaxConns int    `env:"MAX_CONNS,default=25"`
	MinConns int    `env:"MIN_CONNS,default=5"`
}

// NATSConfig holds the connection and subject layout of the custody bus.
type NATSConfig struct {
	URL                 string `env:"URL,default=nats://127.0.0.1:4222"`
	NFTDepositSubject   string `env:"NFT_DEPOSIT_SUBJECT,default=custody.nft.deposit"`
	TokenDepositSubject string `env:"TOKEN_DEPOSIT_SUBJECT,default=custody.token.deposit"`
	RequestTimeout      int    `env:"REQUEST_TIMEOUT,default=5"` // seconds
}

// RedisConfig holds the optional campaign read cache. The cache is
// disabled when Addr is empty.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB,default=0"`
	TTL      int    `env:"TTL,default=300"` // seconds
}

// CustodyConfig identifies this engine on the custody systems.
type CustodyConfig struct {
	// EngineAccount is the deposit destination participants transfer to.
	// Events addressed to anyone else are ignored.
	EngineAccount string `env:"ENGINE_ACCOUNT,default=stakevault"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	Debug       bool   `env:"DEBUG,default=false"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// GetDatabaseURL returns the PostgreSQL connection URL
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if running in development environment
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
