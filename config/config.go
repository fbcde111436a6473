package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	Port       string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	RedisAddr  string
	RedisPass  string
	RedisDB    int

	// EncryptionKey protects PII columns at rest. Injected at process
	// start; controllers receive it through a FieldCipher, never via
	// package-level state.
	EncryptionKey []byte

	SessionTimeout   time.Duration
	MaxLoginAttempts int
	LoginRateWindow  time.Duration
	LoginRateLimit   int
}

func LoadEnv() (*Env, error) {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	keyHex := os.Getenv("ENCRYPTION_KEY")
	if keyHex == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be hex-encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 32 bytes, got %d", len(key))
	}

	env := &Env{
		Port:       getEnv("PORT", "3000"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "hospital_admin"),
		DBPort:     getEnv("DB_PORT", "5432"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),

		EncryptionKey: key,

		SessionTimeout:   time.Duration(getEnvInt("SESSION_TIMEOUT_MINUTES", 60)) * time.Minute,
		MaxLoginAttempts: getEnvInt("MAX_LOGIN_ATTEMPTS", 5),
		LoginRateWindow:  time.Duration(getEnvInt("LOGIN_RATE_WINDOW_MINUTES", 5)) * time.Minute,
		LoginRateLimit:   getEnvInt("LOGIN_RATE_LIMIT", 5),
	}
	env.RedisDB = getEnvInt("REDIS_DB", 0)

	return env, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
