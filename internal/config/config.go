package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/core-coin/go-core/v2/common"
	"github.com/joho/godotenv"

	"github.com/fracta-city/fracta/pkg/validation"
)

type Config struct {
	Development bool
	// API configuration
	APIPort     int
	FrontendURL string
	// MemoryStore replaces Postgres with the in-process store.
	MemoryStore bool
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Auth configuration
	JWTSecret         string
	JWTIssuer         string
	AccessTokenTTL    time.Duration
	LoginChallengeTTL time.Duration
	RedisURL          string
	// AdminWallets are granted admin rights on login.
	AdminWallets []string
	// Blockchain configuration
	PropertyTokenAddress string
	BlockchainServiceURL string
	NetworkID            *big.Int
	PilotPropertyID      int64
	ChainCacheTTL        time.Duration
	// KYC configuration
	KYCValidity time.Duration

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string

	// Notification configuration
	TelegramBotToken    string
	TelegramAdminChatID string
}

// ChainEnabled reports whether a property token contract is configured.
func (c *Config) ChainEnabled() bool {
	return c.PropertyTokenAddress != ""
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:          getEnvAsBool("DEVELOPMENT", false),
		APIPort:              getEnvAsInt("API_PORT", 8000),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		MemoryStore:          getEnvAsBool("MEMORY_STORE", false),
		PostgresUser:         getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:         getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:         getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:           getEnv("POSTGRES_DB", "fracta"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTIssuer:            getEnv("JWT_ISSUER", "fracta.city"),
		AccessTokenTTL:       time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		LoginChallengeTTL:    time.Duration(getEnvAsInt("LOGIN_CHALLENGE_TTL_SECONDS", 300)) * time.Second,
		RedisURL:             getEnv("REDIS_URL", ""),
		AdminWallets:         getEnvAsList("ADMIN_WALLETS"),
		PropertyTokenAddress: getEnv("PROPERTY_TOKEN_ADDRESS", ""),
		BlockchainServiceURL: getEnv("BLOCKCHAIN_SERVICE_URL", "http://localhost:8545"),
		NetworkID:            getEnvAsBigInt("NETWORK_ID", big.NewInt(1)), // Default to Mainnet ID
		PilotPropertyID:      int64(getEnvAsInt("PILOT_PROPERTY_ID", 1)),
		ChainCacheTTL:        time.Duration(getEnvAsInt("CHAIN_CACHE_TTL_SECONDS", 30)) * time.Second,
		KYCValidity:          time.Duration(getEnvAsInt("KYC_VALIDITY_DAYS", 365)) * 24 * time.Hour,
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPSender:           getEnv("SMTP_SENDER", ""),
		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID:  getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
	}

	// Set default network ID before validation (required for address validation)
	common.DefaultNetworkID = common.NetworkID(cfg.NetworkID.Int64())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if !c.MemoryStore {
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	}

	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.LoginChallengeTTL <= 0 {
		return fmt.Errorf("LOGIN_CHALLENGE_TTL_SECONDS must be positive")
	}
	if c.ChainCacheTTL <= 0 {
		return fmt.Errorf("CHAIN_CACHE_TTL_SECONDS must be positive")
	}
	if c.KYCValidity <= 0 {
		return fmt.Errorf("KYC_VALIDITY_DAYS must be positive")
	}

	if c.ChainEnabled() {
		if _, err := common.HexToAddress(c.PropertyTokenAddress); err != nil {
			return fmt.Errorf("invalid PROPERTY_TOKEN_ADDRESS format: %w", err)
		}
		if c.BlockchainServiceURL == "" {
			return fmt.Errorf("BLOCKCHAIN_SERVICE_URL is required when PROPERTY_TOKEN_ADDRESS is set")
		}
	}

	for i, wallet := range c.AdminWallets {
		normalized, err := validation.ValidateAndNormalizeAddress(wallet)
		if err != nil {
			return fmt.Errorf("invalid ADMIN_WALLETS entry %q: %w", wallet, err)
		}
		c.AdminWallets[i] = normalized
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBigInt(name string, defaultValue *big.Int) *big.Int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, ok := new(big.Int).SetString(valueStr, 10); ok {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(name string) []string {
	valueStr, exists := os.LookupEnv(name)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
