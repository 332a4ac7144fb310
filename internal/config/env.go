package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	GenModel     string
	EmbedModel   string
	JWTSecret    string
	IndexWorkers int
	Port         string
}

// LoadConfig loads the environment variables and returns the config.
// An empty DATABASE_URL switches the app into demo mode: the seeded
// in-memory store instead of Postgres.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "ap-south-1"),
		BucketName:   getEnv("BUCKET_NAME", "paperhub-papers"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		IndexWorkers: getEnvInt("INDEX_WORKERS", 1),
		Port:         getEnv("PORT", "8080"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set; running in demo mode with the in-memory store")
	}

	return cfg
}

// DemoMode reports whether the app runs on the in-memory store.
func (c *Config) DemoMode() bool {
	return c.DatabaseURL == ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
