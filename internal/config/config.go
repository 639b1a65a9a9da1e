package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/erkineren/homework-monitor/internal/errors"
)

const (
	DefaultEndpoint       = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultRetryInterval  = 600 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "debug"
)

type Config struct {
	PracticumToken      string
	TelegramToken       string
	TelegramChatID      string
	Endpoint            string
	TelegramAPIEndpoint string
	RetryInterval       time.Duration
	RequestTimeout      time.Duration
	LogLevel            string
}

// Load reads the given .env files (".env" when none are given) into the
// process environment and builds the Config. Variables already set in the
// environment win. A missing .env file is not an error.
func Load(filenames ...string) (*Config, error) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("error loading .env file: %v", err))
	}

	var missing []string
	required := func(key string) string {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	cfg := &Config{
		PracticumToken:      required("PRACTICUM_TOKEN"),
		TelegramToken:       required("TELEGRAM_TOKEN"),
		TelegramChatID:      required("TELEGRAM_CHAT_ID"),
		Endpoint:            getEnvWithDefault("PRACTICUM_ENDPOINT", DefaultEndpoint),
		TelegramAPIEndpoint: getEnvWithDefault("TELEGRAM_API_ENDPOINT", ""),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", DefaultLogLevel),
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingVariablesError(missing)
	}

	var err error
	if cfg.RetryInterval, err = secondsFromEnv("RETRY_INTERVAL", DefaultRetryInterval); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = secondsFromEnv("REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

func secondsFromEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvWithDefault(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, apperrors.NewConfigurationError(fmt.Sprintf("invalid %s: %q", key, raw))
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}
