package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/f4ah6o/webserver/internal/response"
)

type tomlFile struct {
	Server struct {
		Port           int64            `toml:"port"`
		Prefix         string           `toml:"prefix"`
		Path           string           `toml:"path"`
		Headers        []map[string]any `toml:"headers"`
		Workers        int64            `toml:"workers"`
		AllowTraversal bool             `toml:"allow_traversal"`
	} `toml:"server"`
}

// ParseTOML decodes a TOML document with a [server] table. Each element of
// server.headers is an inline table holding exactly one key.
func ParseTOML(data []byte) (*Config, error) {
	var f tomlFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML config: %w", err)
	}
	if !md.IsDefined("server") {
		return nil, errors.New("`server` section is missing")
	}
	for _, key := range []string{"port", "prefix", "path", "headers"} {
		if !md.IsDefined("server", key) {
			return nil, fmt.Errorf("`%s` is required", key)
		}
	}

	c := newConfig()
	if err := c.setPort(f.Server.Port); err != nil {
		return nil, err
	}
	c.Prefix = f.Server.Prefix
	c.BasePath = f.Server.Path

	for i, entry := range f.Server.Headers {
		if len(entry) != 1 {
			return nil, fmt.Errorf("header should be a key-value pair (header index: %d)", i+1)
		}
		for name, v := range entry {
			value, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("header value should be a string (header index: %d)", i+1)
			}
			c.Headers = append(c.Headers, response.Header{Name: name, Value: value})
		}
	}

	if md.IsDefined("server", "workers") {
		if err := c.setWorkers(f.Server.Workers); err != nil {
			return nil, err
		}
	}
	c.AllowTraversal = f.Server.AllowTraversal

	return c, nil
}
