// Package config loads typed configuration from the environment.
//
// Structs declare variables with caarlos0/env tags. A .env file in the
// working directory is read once on first use:
//
//	type Config struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Load caches the parsed value per type. Parse skips the cache. LoadFile
// overlays a TOML file on top of the environment values, so fields present
// in the file win; fields map through `toml` tags.
package config
