package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	SessionSecret   string
	SessionTTLHours int
	SecureCookies   bool
	RedisAddr       string
	KafkaAddress    string
	ESURL           string
	ESUser          string
	ESPassword      string
	LogLevel        string
}

func LoadConfig() (*Config, error) {
	loadDotenv()

	config := &Config{
		Addr:            getenv("ADDR", ":8080"),
		DatabaseURL:     getenv("DATABASE_URL", "shop.sqlite3"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionTTLHours: getenvInt("SESSION_TTL_HOURS", 24),
		SecureCookies:   getenvBool("COOKIE_SECURE", false),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaAddress:    os.Getenv("KAFKA_ADDRESS"),
		ESURL:           os.Getenv("ES_URL"),
		ESUser:          os.Getenv("ES_USER"),
		ESPassword:      os.Getenv("ES_PASSWORD"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}

	if config.SessionSecret == "" {
		log.Printf("Notice: SESSION_SECRET is empty, sessions will not survive restarts")
		config.SessionSecret = "dev-only-secret"
	}

	return config, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
