package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// 空の場合はインメモリストアを使用する。
	DatabaseURL string

	// Source
	SourceBaseURL string

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Timezone
	// 「今日」の日付を決定する基準タイムゾーン（IANA名）。
	Timezone string

	// Rate Limit
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// defaultSourceBaseURL は日課ページを公開しているサイトのオリジン。
const defaultSourceBaseURL = "https://www.oca.org"

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envファイルが存在する場合は先に読み込む
// （既に設定済みの環境変数は上書きしない）。
// タイムゾーン名が解決できない場合はエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発用。存在しなくてもエラーにしない。
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SourceBaseURL = getEnvString("SOURCE_BASE_URL", defaultSourceBaseURL)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.Timezone = getEnvString("TIMEZONE", "UTC")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location は基準タイムゾーンのtime.Locationを返す。
// Loadでタイムゾーン名は検証済みのため、呼び出し側でのエラー処理は不要。
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
