package config

import "os"

var Envs = struct {
	FRONTEND_ORIGIN string
	JWT_KEY         []byte
	POSTGRES_URL    string
	REDIS_URL       string
	GIN_MODE        string
	PORT            string
}{
	FRONTEND_ORIGIN: os.Getenv("FRONTEND_ORIGIN"),
	JWT_KEY:         []byte(os.Getenv("JWT_KEY")),
	POSTGRES_URL:    os.Getenv("POSTGRES_URL"),
	REDIS_URL:       os.Getenv("REDIS_URL"),
	GIN_MODE:        os.Getenv("GIN_MODE"),
	PORT:            os.Getenv("PORT"),
}

var Debug = os.Getenv("DEBUG") == "true"
