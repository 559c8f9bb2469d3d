package config

import (
	"os"
	"strconv"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName           string
	Port              string
	Env               string
	Debug             bool
	SeedFile          string
	GuestCartTTLHours int
	// Add more fields as needed
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		ttl := 72
		if v, err := strconv.Atoi(os.Getenv("GUEST_CART_TTL_HOURS")); err == nil && v > 0 {
			ttl = v
		}
		AppConfig = &Config{
			AppName:           os.Getenv("APP_NAME"),
			Port:              os.Getenv("PORT"),
			Env:               os.Getenv("APP_ENV"),
			Debug:             os.Getenv("DEBUG") == "true",
			SeedFile:          os.Getenv("CATALOG_SEED_FILE"),
			GuestCartTTLHours: ttl,
		}
	})
}
