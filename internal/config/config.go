package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime knob. All values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	Host string
	Port int

	CORSOrigins []string

	WordSelectionTime time.Duration
	ResultDisplayTime time.Duration
	IntermissionTime  time.Duration

	WordsDir string

	SelfPingURL      string
	SelfPingInterval time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config.Load] no .env file loaded: %v", err)
	}

	cfg := Config{
		Host:              getenv("HOST", "0.0.0.0"),
		Port:              getenvInt("PORT", 5000),
		WordSelectionTime: time.Duration(getenvInt("WORD_SELECTION_TIME", 10)) * time.Second,
		ResultDisplayTime: time.Duration(getenvInt("RESULT_DISPLAY_TIME", 5)) * time.Second,
		IntermissionTime:  time.Duration(getenvInt("INTERMISSION_TIME", 3)) * time.Second,
		WordsDir:          getenv("WORDS_DIR", "words"),
		SelfPingURL:       os.Getenv("SELF_PING_URL"),
		SelfPingInterval:  time.Duration(getenvInt("SELF_PING_INTERVAL", 600)) * time.Second,
	}

	origins := getenv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg
}

// Addr is the host:port the HTTP server binds to.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config.Load] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
