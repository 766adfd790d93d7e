package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the recommender service.
type Config struct {
	DB     DBConfig
	Redis  RedisConfig
	TMDB   TMDBConfig
	Engine EngineConfig
	Server ServerConfig
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TMDBConfig holds TMDB API configuration. The key is handed to the
// catalog client at construction; nothing reads it globally.
type TMDBConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string
}

// EngineConfig holds the tunable scoring parameters.
type EngineConfig struct {
	CollabWeight   float64
	ContentWeight  float64
	LikedThreshold float64
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port                   string
	RateLimitMax           int
	RateLimitWindowSeconds int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateLimitMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	rateLimitWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))

	collabWeight, _ := strconv.ParseFloat(getEnv("ENGINE_COLLAB_WEIGHT", "0.6"), 64)
	contentWeight, _ := strconv.ParseFloat(getEnv("ENGINE_CONTENT_WEIGHT", "0.4"), 64)
	likedThreshold, _ := strconv.ParseFloat(getEnv("ENGINE_LIKED_THRESHOLD", "7"), 64)

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "movie_recommender"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		TMDB: TMDBConfig{
			APIKey:   os.Getenv("TMDB_API_KEY"),
			BaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			Language: getEnv("TMDB_LANGUAGE", "en-US"),
			Region:   getEnv("TMDB_REGION", "US"),
		},
		Engine: EngineConfig{
			CollabWeight:   collabWeight,
			ContentWeight:  contentWeight,
			LikedThreshold: likedThreshold,
		},
		Server: ServerConfig{
			Port:                   getEnv("SERVER_PORT", "8080"),
			RateLimitMax:           rateLimitMax,
			RateLimitWindowSeconds: rateLimitWindow,
		},
	}

	if cfg.TMDB.APIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
