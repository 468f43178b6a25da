package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrParseEnv  = errors.New("failed to parse environment")
	ErrReadFile  = errors.New("failed to read config file")
	ErrParseFile = errors.New("failed to parse config file")
)

var (
	dotenvOnce sync.Once

	cacheMu sync.Mutex
	cache   = map[reflect.Type]any{}
)

func loadDotenv() {
	dotenvOnce.Do(func() {
		// A missing .env file is fine.
		_ = godotenv.Load()
	})
}

// Load fills cfg from the environment, reading .env on first use. Each
// type is parsed once; later calls copy the cached value.
func Load[T any](cfg *T) error {
	t := reflect.TypeFor[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[t]; ok {
		*cfg = cached.(T)
		return nil
	}
	if err := Parse(cfg); err != nil {
		return err
	}
	cache[t] = *cfg
	return nil
}

// MustLoad is Load that panics on failure.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Parse fills cfg from the environment without caching.
func Parse[T any](cfg *T) error {
	loadDotenv()
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrParseEnv, err)
	}
	return nil
}

// LoadFile parses the environment into cfg and then overlays the TOML file
// at path. Keys present in the file win. An empty path only parses the
// environment.
func LoadFile[T any](path string, cfg *T) error {
	if err := Parse(cfg); err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParseFile, path, err)
	}
	return nil
}

// resetCache clears cached configs. Used by tests.
func resetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[reflect.Type]any{}
}
