package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	Port        string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string
	JWTSecret   string
	GroqAPIKey  string
	GroqBaseURL string
	AudioDir    string
}

var (
	cfg  *Config
	once sync.Once
)

// LoadConfig reads the .env file once and falls back to plain environment
// variables when it is absent.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg = &Config{
			AppEnv:      os.Getenv("APP_ENV"),
			Port:        os.Getenv("PORT"),
			DBUser:      os.Getenv("DB_USER"),
			DBPassword:  os.Getenv("DB_PASSWORD"),
			DBHost:      os.Getenv("DB_HOST"),
			DBPort:      os.Getenv("DB_PORT"),
			DBName:      os.Getenv("DB_NAME"),
			JWTSecret:   os.Getenv("JWT_SECRET_KEY"),
			GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
			GroqBaseURL: os.Getenv("GROQ_BASE_URL"),
			AudioDir:    os.Getenv("AUDIO_DIR"),
		}
		if cfg.Port == "" {
			cfg.Port = "8080"
		}
		if cfg.AudioDir == "" {
			cfg.AudioDir = "storage/audio"
		}
	})
	return cfg
}
