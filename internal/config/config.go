package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUrl     string
	Port      string
	RedisAddr string
	RedisPass string
	LogLevel  string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using environment defaults")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return Config{
		DBUrl:     os.Getenv("DB_URL"),
		Port:      port,
		RedisAddr: redisAddr,
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
	}
}
