package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort      = 8080
	defaultSQLitePath      = "tareas.db"
	defaultSessionTTLHours = 24
)

type Config struct {
	ServerPort int

	// DatabaseURL selects hosted postgres when set; otherwise the app
	// uses a local sqlite file at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	SessionTTL time.Duration
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort:  getEnvInt("SERVER_PORT", defaultServerPort),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", defaultSQLitePath),
		SessionTTL:  time.Duration(getEnvInt("SESSION_TTL_HOURS", defaultSessionTTLHours)) * time.Hour,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}
