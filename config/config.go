package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"regional-means/logging"
)

type Config struct {
	DataDir       string
	LatVar        string
	LonVar        string
	Variable      string
	Regions       []string // пусто - весь каталог
	Workers       int
	CacheDuration int // минуты
	ServerPort    string
	LogLevel      string
	LogDir        string
}

func Load() (*Config, error) {
	// Загружаем .env файл если существует
	godotenv.Load()

	config := &Config{
		DataDir:       getEnv("DATA_DIR", "."),
		LatVar:        getEnv("LAT_VAR", "lat"),
		LonVar:        getEnv("LON_VAR", "lon"),
		Variable:      getEnv("VARIABLE", "tas"),
		Regions:       getEnvAsList("REGIONS"),
		Workers:       getEnvAsInt("WORKERS", 4),
		CacheDuration: getEnvAsInt("CACHE_DURATION", 10),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogDir:        getEnv("LOG_DIR", ""),
	}

	if config.Workers < 1 {
		return nil, fmt.Errorf("WORKERS должно быть не меньше 1, получено %d", config.Workers)
	}
	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsList разбирает список через запятую
func getEnvAsList(key string) []string {
	return SplitList(getEnv(key, ""))
}

// SplitList разбирает "Arctic, Europe" в ["Arctic" "Europe"]
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
