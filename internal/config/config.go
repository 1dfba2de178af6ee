// Package config loads the server configuration from a YAML or TOML file.
//
// Both formats describe a single "server" section:
//
//	server:
//	  port: 8080
//	  prefix: /static
//	  path: ./public
//	  headers:
//	    - X-Frame-Options: DENY
//	    - Cache-Control: no-store
//
// The optional keys "workers" and "allow_traversal" tune the listener and
// the connection handler.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/f4ah6o/webserver/internal/response"
)

const (
	// DefaultHeaderName and DefaultHeaderValue make up the header sent first
	// on every response.
	DefaultHeaderName  = "X-Server"
	DefaultHeaderValue = "Rust WebServer"

	// EnvConfigPath names the environment variable (or .env entry) holding
	// the config file path.
	EnvConfigPath = "WEBSERVER_CONFIG"

	// Host is the only address the server binds to.
	Host = "127.0.0.1"
)

// Config is the server configuration. It is built once by Load or one of the
// Parse functions and must not be modified afterwards.
type Config struct {
	Port     uint16
	Prefix   string
	BasePath string

	// Headers starts with the default X-Server header, followed by the
	// configured headers in file order.
	Headers []response.Header

	// Workers bounds the number of connections handled at once. 1 means
	// strictly sequential handling.
	Workers int

	// AllowTraversal disables the rejection of targets with ".." segments.
	AllowTraversal bool
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", Host, c.Port)
}

// Load reads path and decodes it as TOML when it has a .toml extension and as
// YAML otherwise.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return ParseYAML(data)
}

// ResolvePath picks the config file path: the first positional argument,
// then the -config flag value, then EnvConfigPath from the environment, then
// EnvConfigPath from envFile. A missing envFile is not an error.
func ResolvePath(args []string, flagValue, envFile string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if flagValue != "" {
		return flagValue, nil
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	vars, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("reading %s: %w", envFile, err)
	}
	if p := vars[EnvConfigPath]; p != "" {
		return p, nil
	}
	return "", errors.New("path to config file is not set")
}

func newConfig() *Config {
	return &Config{
		Headers: []response.Header{{Name: DefaultHeaderName, Value: DefaultHeaderValue}},
		Workers: 1,
	}
}

func (c *Config) setPort(port int64) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("`port` should be between 1 and 65535, got %d", port)
	}
	c.Port = uint16(port)
	return nil
}

func (c *Config) setWorkers(n int64) error {
	if n < 1 {
		return fmt.Errorf("`workers` should be at least 1, got %d", n)
	}
	c.Workers = int(n)
	return nil
}
