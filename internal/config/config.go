package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration, read once at startup from the
// environment.
type Config struct {
	HTTPPort string

	DBHost            string
	DBPort            int
	DBUser            string
	DBPassword        string
	DBName            string
	MigrationsDirPath string

	MongoURI     string
	MongoDBName  string
	RedisAddr    string
	KafkaBrokers []string

	PushGatewayURL string
	RolesFilePath  string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnvInt("DB_PORT", 5432),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "eatai"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:  getEnv("MONGO_DB", "eatai"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		PushGatewayURL: getEnv("PUSH_GATEWAY_URL", "http://localhost:9099/push"),
		RolesFilePath:  getEnv("ROLES_FILE", "./roles.yaml"),

		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
