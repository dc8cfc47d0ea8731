// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/filevault/core/config"
//
//	type CatalogConfig struct {
//		URL         string        `env:"DATABASE_URL,required"`
//		PingTimeout time.Duration `env:"DATABASE_PING_TIMEOUT" envDefault:"5s"`
//	}
//
//	func main() {
//		var cfg CatalogConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 CatalogConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 CatalogConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently, so every filevault package can keep
// its own Config struct without coordinating variable names at load time.
package config
