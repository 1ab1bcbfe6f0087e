package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Seoul is the fixed local offset every produced timestamp uses.
var Seoul = time.FixedZone("KST", 9*60*60)

// Config holds runtime configuration loaded from the environment.
type Config struct {
	// Upstage Solar chat API
	UpstageAPIKey  string
	UpstageBaseURL string
	UpstageModel   string

	// Gmail polling
	GmailQuery      string
	GmailMaxResults int

	// Persistence
	DBPath string

	// Watch loop output
	TimelinePath string

	// Google OAuth (token JSON file produced by an external auth flow)
	GoogleTokenFile string
}

// Load reads configuration from .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		UpstageAPIKey:   strings.TrimSpace(os.Getenv("UPSTAGE_API_KEY")),
		UpstageBaseURL:  getEnv("UPSTAGE_BASE_URL", "https://api.upstage.ai/v1/solar"),
		UpstageModel:    getEnv("UPSTAGE_MODEL", "solar-pro"),
		GmailQuery:      getEnv("GMAIL_QUERY", "is:unread newer_than:1d"),
		GmailMaxResults: getEnvInt("GMAIL_MAX_RESULTS", 20),
		DBPath:          getEnv("MAILENDAR_DB", "mailendar.db"),
		TimelinePath:    getEnv("MAILENDAR_TIMELINE", "data.json"),
		GoogleTokenFile: getEnv("GOOGLE_TOKEN_FILE", ".tokens/token.json"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
