package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	GeminiAPIURL   string
	GeminiAPIKey   string        // пустой ключ допустим, запрос уйдёт без учётных данных
	SummaryTimeout time.Duration // при 0 ждём сколько позволит транспорт

	DetectionDelay time.Duration

	RenderBackend    string // gg или gocv
	ReportFontPath   string // если пусто, встроенный шрифт Go
	ReportDateLayout string

	MetricsAddr string // если пусто, HTTP метрик нет
	LogLevel    string
	LogDev      bool
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		GeminiAPIURL:     getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-preview-05-20:generateContent"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		SummaryTimeout:   getEnvAsDuration("SUMMARY_TIMEOUT", 30*time.Second),
		DetectionDelay:   getEnvAsDuration("DETECTION_DELAY", 2*time.Second),
		RenderBackend:    strings.ToLower(getEnv("RENDER_BACKEND", "gg")),
		ReportFontPath:   os.Getenv("REPORT_FONT_PATH"),
		ReportDateLayout: getEnv("REPORT_DATE_LAYOUT", "02.01.2006"),
		MetricsAddr:      getEnvAllowEmpty("METRICS_ADDR", ":9090"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogDev:           getEnvAsBool("LOG_DEV", false),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty отличает пустое значение от отсутствующей переменной.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration понимает "1500ms", "2s", а голое число считает секундами.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
