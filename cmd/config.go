package cmd

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/finassist/assistant"
	"github.com/etnz/finassist/cache"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Settings are the global settings of fina. Each one is a global flag whose
// default comes from an environment variable.
type Settings struct {
	Port        string
	Store       string // memory, postgres or mongodb
	Ledger      string // JSONL ledger of the memory store, demo ledger when empty
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	RedisAddr   string // no cache when empty
	RedisPass   string
	CacheTTL    time.Duration
	GeminiKey   string
	GeminiModel string
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	Timeout     time.Duration
	Currency    string
	Debug       bool
}

// Config holds the settings once flags are parsed.
var Config Settings

// LoadEnv loads the .env file of the current directory, if any, into the
// environment. It must be called before SetFlags.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warnf("cannot load .env: %v", err)
	}
}

// SetFlags declares the global flags in f.
func (s *Settings) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.Port, "port", env("PORT", "3000"), "HTTP port of the API server")
	f.StringVar(&s.Store, "store", env("FINASSIST_STORE", "memory"), "ledger store: memory, postgres or mongodb")
	f.StringVar(&s.Ledger, "ledger", env("FINASSIST_LEDGER", ""), "JSONL ledger file of the memory store, the demo ledger if empty")
	f.StringVar(&s.DatabaseURL, "database-url", env("DATABASE_URL", "postgres://localhost:5432/finassist?sslmode=disable"), "PostgreSQL connection url")
	f.StringVar(&s.MongoURI, "mongo-uri", env("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection uri")
	f.StringVar(&s.MongoDB, "mongo-db", env("MONGO_DB", "finassist"), "MongoDB database")
	f.StringVar(&s.RedisAddr, "redis-addr", env("REDIS_ADDR", ""), "Redis address caching customers, no cache if empty")
	f.StringVar(&s.RedisPass, "redis-pass", env("REDIS_PASS", ""), "Redis password")
	f.DurationVar(&s.CacheTTL, "cache-ttl", envDuration("CACHE_TTL", cache.DefaultTTL), "lifetime of cached customers")
	f.StringVar(&s.GeminiKey, "gemini-api-key", env("GEMINI_API_KEY", ""), "Gemini API key, questions cannot be answered without it")
	f.StringVar(&s.GeminiModel, "gemini-model", env("GEMINI_MODEL", "gemini-2.5-flash"), "Gemini model answering questions")
	f.StringVar(&s.SMTPHost, "smtp-host", env("SMTP_HOST", ""), "SMTP server host, statements cannot be sent without it")
	f.StringVar(&s.SMTPPort, "smtp-port", env("SMTP_PORT", "465"), "SMTP server port, 465 for implicit TLS")
	f.StringVar(&s.SMTPUser, "smtp-user", env("SMTP_USER", ""), "SMTP user name")
	f.StringVar(&s.SMTPPass, "smtp-pass", env("SMTP_PASS", ""), "SMTP password")
	f.StringVar(&s.MailFrom, "mail-from", env("MAIL_FROM", ""), "sender address of statements, the SMTP user if empty")
	f.DurationVar(&s.Timeout, "timeout", envDuration("CALL_TIMEOUT", assistant.DefaultTimeout), "timeout of each call to the store, the assistant or the mail server")
	f.StringVar(&s.Currency, "currency", env("FINASSIST_CURRENCY", "USD"), "currency of amounts in reports")
	f.BoolVar(&s.Debug, "debug", false, "verbose logs and error causes")
}

// env returns the value of the environment variable key, or def when unset.
func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		warnf("invalid duration %s=%q, using %v", key, v, def)
		return def
	}
	return d
}

// warnings found while reading the configuration, before any logger exists.
var warnings []string

func warnf(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }

// flushWarnings logs the pending configuration warnings once.
func flushWarnings(log *zap.Logger) {
	for _, w := range warnings {
		log.Warn("configuration", zap.String("warning", w))
	}
	warnings = nil
}
