package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	// Matching holds the engine knobs. Defaults mirror the product MVP:
	// 3-5 profiles per day above a 0.6 compatibility floor, 1 choice per
	// day for free users and 3 for premium.
	Matching struct {
		CompatibilityThreshold float64
		MinProfiles            int
		MaxProfiles            int
		FreeChoices            int
		PremiumChoices         int
		MaxAgeGap              int
		CandidatePoolLimit     int
		SelectionExclusionDays int
		ScoreCacheTTL          time.Duration
		GenderPairs            map[string]string
	}
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matching_service")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "goldwen")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8000")

	// Matching engine
	cfg.Matching.CompatibilityThreshold = getEnvFloat("COMPATIBILITY_THRESHOLD", 0.6)
	cfg.Matching.MinProfiles = getEnvInt("MIN_DAILY_PROFILES", 3)
	cfg.Matching.MaxProfiles = getEnvInt("MAX_DAILY_PROFILES", 5)
	cfg.Matching.FreeChoices = getEnvInt("FREE_DAILY_CHOICES", 1)
	cfg.Matching.PremiumChoices = getEnvInt("PREMIUM_DAILY_CHOICES", 3)
	cfg.Matching.MaxAgeGap = getEnvInt("MAX_AGE_GAP", 10)
	cfg.Matching.CandidatePoolLimit = getEnvInt("CANDIDATE_POOL_LIMIT", 50)
	cfg.Matching.SelectionExclusionDays = getEnvInt("SELECTION_EXCLUSION_DAYS", 7)
	cfg.Matching.ScoreCacheTTL = getEnvDuration("SCORE_CACHE_TTL", 24*time.Hour)
	cfg.Matching.GenderPairs = parseGenderPairs(
		getEnvDefault("GENDER_PAIRS", "male:female,female:male"),
	)

	return cfg
}

// parseGenderPairs reads a "requester:candidate" mapping list, e.g.
// "male:female,female:male". The mapping is configuration rather than a
// hardcoded binary so the MVP filter can be extended without code changes.
func parseGenderPairs(s string) map[string]string {
	pairs := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.ToLower(strings.TrimSpace(kv[1]))
		if k != "" && v != "" {
			pairs[k] = v
		}
	}
	return pairs
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
