package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultUserAgent is a desktop browser UA. Many recipe sites refuse bot-looking clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// AppConfig holds all configuration for the application
type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	// Fetching
	FetchTimeout   time.Duration // deadline for a single strategy fetch
	RequestTimeout time.Duration
	MaxBodyBytes   int
	UserAgent      string
	// Renderer used for JS-heavy social pages: none, chromedp or rod
	Renderer        string
	BrowserPoolSize int

	// Optional YouTube Data API key for the video-description strategy
	YouTubeAPIKey string

	// Extraction cache: memory, redis or none
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Recipe storage: sqlite or postgres
	DBDriver string
	DBDSN    string

	WorkerPoolSize  int
	WorkerQueueSize int

	PlaceholderImageURL string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*AppConfig, error) {
	// A missing .env is fine, containers set the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Info("Could not load .env file, using environment variables", "error", err)
	}

	cfg := &AppConfig{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		UserAgent:           getEnv("USER_AGENT", DefaultUserAgent),
		Renderer:            strings.ToLower(getEnv("RENDERER", "none")),
		YouTubeAPIKey:       os.Getenv("YOUTUBE_API_KEY"),
		CacheBackend:        strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		DBDriver:            strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:               getEnv("DB_DSN", "recipes.db"),
		PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", "/static/recipe-placeholder.jpg"),
	}

	var err error
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes, err = getInt("MAX_BODY_BYTES", 10*1024*1024); err != nil {
		return nil, err
	}
	if cfg.BrowserPoolSize, err = getInt("BROWSER_POOL_SIZE", 2); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.WorkerPoolSize, err = getInt("WORKER_POOL_SIZE", 4); err != nil {
		return nil, err
	}
	if cfg.WorkerQueueSize, err = getInt("WORKER_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid
func (c *AppConfig) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port number: %s", c.Port)
	}

	switch c.Renderer {
	case "none", "chromedp", "rod":
	default:
		return fmt.Errorf("invalid renderer: %s (must be 'none', 'chromedp' or 'rod')", c.Renderer)
	}

	switch c.CacheBackend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("invalid cache backend: %s (must be 'memory', 'redis' or 'none')", c.CacheBackend)
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %s (must be 'sqlite' or 'postgres')", c.DBDriver)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.WorkerPoolSize <= 0 || c.WorkerQueueSize <= 0 {
		return fmt.Errorf("worker pool size and queue size must be positive")
	}
	if c.Renderer == "rod" && c.BrowserPoolSize <= 0 {
		return fmt.Errorf("browser pool size must be positive when using the rod renderer")
	}

	if c.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY not set - YouTube URLs will only use page strategies")
	}
	if c.Renderer == "none" {
		slog.Info("No renderer configured - social media pages are fetched without JavaScript")
	}

	return nil
}

// GetPort returns the port as an integer
func (c *AppConfig) GetPort() int {
	port, _ := strconv.Atoi(c.Port) // Already validated in Validate()
	return port
}

// HasYouTubeConfig returns true if YouTube API configuration is available
func (c *AppConfig) HasYouTubeConfig() bool {
	return c.YouTubeAPIKey != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, value)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
