package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/comalice/metrosim"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Simulation
	Dwell        time.Duration
	Timeout      time.Duration
	StallTimeout time.Duration
	Seed         int64

	// Server
	Addr    string
	GinMode string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present. Malformed values are
// reported and replaced by their defaults.
func Load() *Config {
	// Try to load .env file (optional for local development)
	_ = godotenv.Load()

	return &Config{
		Dwell:        getDuration("METROSIM_DWELL", metrosim.DefaultDwell),
		Timeout:      getDuration("METROSIM_TIMEOUT", 0),
		StallTimeout: getDuration("METROSIM_STALL_TIMEOUT", 0),
		Seed:         getInt64("METROSIM_SEED", 0),

		Addr:    getEnv("METROSIM_ADDR", ":8080"),
		GinMode: getEnv("GIN_MODE", "release"),
	}
}

// Options converts the simulation settings into run options. A zero seed
// leaves train choice random.
func (c *Config) Options() []metrosim.Option {
	opts := []metrosim.Option{metrosim.WithDwell(c.Dwell)}
	if c.Timeout > 0 {
		opts = append(opts, metrosim.WithTimeout(c.Timeout))
	}
	if c.StallTimeout > 0 {
		opts = append(opts, metrosim.WithStallTimeout(c.StallTimeout))
	}
	if c.Seed != 0 {
		opts = append(opts, metrosim.WithSeed(c.Seed))
	}
	return opts
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.Printf("WARNING: invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
