package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	CORSOrigins []string
	SeedDir     string // quiz files imported at server start

	// Client side
	APIBaseURL   string
	SessionStore string // file|sqlite|redis|memory
	SessionDir   string
	SessionDSN   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NoColor bool
	LogFile string
}

// FromEnv reads a .env file in the working directory when present, then the
// process environment. Variables already set win over the file.
func FromEnv() Config {
	_ = godotenv.Load()
	return Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		SeedDir:       os.Getenv("SEED_DIR"),
		APIBaseURL:    envOr("API_BASE_URL", "http://localhost:8080/api"),
		SessionStore:  envOr("SESSION_STORE", "file"),
		SessionDir:    envOr("SESSION_DIR", defaultSessionDir()),
		SessionDSN:    envOr("SESSION_DSN", ""),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		NoColor:       os.Getenv("NO_COLOR") != "" || envBool("PLAIN", false),
		LogFile:       os.Getenv("LOG_FILE"),
	}
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return dir + string(os.PathSeparator) + "practice-exam"
	}
	return "./data/progress"
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
