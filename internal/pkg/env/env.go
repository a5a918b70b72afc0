package env

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	mu      sync.RWMutex
	fileEnv = map[string]string{}
)

// GetEnv prefers values from the .env file over the process environment.
func GetEnv(key, def string) string {
	mu.RLock()
	val, ok := fileEnv[key]
	mu.RUnlock()
	if ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// Set overrides a single key, mainly for tests.
func Set(key, value string) {
	mu.Lock()
	fileEnv[key] = value
	mu.Unlock()
}

// SetupEnvFile loads ENV_FILE, or .env in the working directory.
func SetupEnvFile() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	values, err := godotenv.Read(path)
	if err != nil {
		log.Printf("No env file at %s, using OS environment only", path)
		return
	}
	mu.Lock()
	fileEnv = values
	mu.Unlock()
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
