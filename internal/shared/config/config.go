package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port              string
	Env               string
	DatabaseURL       string
	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMTimeout        time.Duration
	LLMSummaryTimeout time.Duration
	SMTPServer        string
	SMTPPort          int
	SMTPEmail         string
	SMTPPassword      string
	SMTPTimeout       time.Duration
	SummaryRecipients []string
	AllowedDomains    []string
	ScheduleWeekday   time.Weekday
	ScheduleHour      int
	WindowMonths      int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:              getEnv("PORT", "8080"),
		Env:               env,
		DatabaseURL:       dbURL,
		LLMBaseURL:        getEnv("OPENAI_BASE", "https://api.openai.com/v1"),
		LLMAPIKey:         getEnv("OPENAI_API_KEY", ""),
		LLMModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:        getEnvSeconds("OPENAI_TIMEOUT_SECONDS", 300*time.Second),
		LLMSummaryTimeout: getEnvSeconds("OPENAI_SUMMARY_TIMEOUT_SECONDS", 120*time.Second),
		SMTPServer:        getEnv("SMTP_SERVER", "smtp.office365.com"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPEmail:         getEnv("SMTP_EMAIL", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPTimeout:       getEnvSeconds("SMTP_TIMEOUT_SECONDS", 30*time.Second),
		SummaryRecipients: splitAndTrim(getEnv("SUMMARY_RECIPIENTS", "")),
		AllowedDomains:    lowercaseAll(splitAndTrim(getEnv("OWNER_ALLOW_DOMAINS", "awcghana.com"))),
		ScheduleWeekday:   parseWeekday(getEnv("SCHEDULE_WEEKDAY", "Monday")),
		ScheduleHour:      getEnvInt("SCHEDULE_HOUR", 12),
		WindowMonths:      getEnvInt("KRI_WINDOW_MONTHS", 2),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using default", key, raw)
		return def
	}
	return val
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid seconds %q, using default", key, raw)
		return def
	}
	return time.Duration(val) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lowercaseAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.ToLower(item))
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func parseWeekday(raw string) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sunday", "sun":
		return time.Sunday
	case "monday", "mon":
		return time.Monday
	case "tuesday", "tue":
		return time.Tuesday
	case "wednesday", "wed":
		return time.Wednesday
	case "thursday", "thu":
		return time.Thursday
	case "friday", "fri":
		return time.Friday
	case "saturday", "sat":
		return time.Saturday
	default:
		return time.Monday
	}
}
