package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/f4ah6o/webserver/internal/response"
)

const validYAML = `
server:
  port: 8080
  prefix: /static
  path: ./public
  headers:
    - X-Frame-Options: DENY
    - Cache-Control: no-store
    - X-Frame-Options: SAMEORIGIN
`

const validTOML = `
[server]
port = 8080
prefix = "/static"
path = "./public"
headers = [
  { "X-Frame-Options" = "DENY" },
  { "Cache-Control" = "no-store" },
  { "X-Frame-Options" = "SAMEORIGIN" },
]
`

var wantHeaders = []response.Header{
	{Name: "X-Server", Value: "Rust WebServer"},
	{Name: "X-Frame-Options", Value: "DENY"},
	{Name: "Cache-Control", Value: "no-store"},
	{Name: "X-Frame-Options", Value: "SAMEORIGIN"},
}

func TestParseValid(t *testing.T) {
	tests := []struct {
		name  string
		parse func([]byte) (*Config, error)
		data  string
	}{
		{"YAML", ParseYAML, validYAML},
		{"TOML", ParseTOML, validTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if c.Port != 8080 {
				t.Errorf("Port = %d, want 8080", c.Port)
			}
			if c.Prefix != "/static" || c.BasePath != "./public" {
				t.Errorf("Prefix, BasePath = %q, %q", c.Prefix, c.BasePath)
			}
			if !reflect.DeepEqual(c.Headers, wantHeaders) {
				t.Errorf("Headers = %+v, want %+v", c.Headers, wantHeaders)
			}
			if c.Workers != 1 || c.AllowTraversal {
				t.Errorf("Workers, AllowTraversal = %d, %v, want defaults", c.Workers, c.AllowTraversal)
			}
			if got := c.Addr(); got != "127.0.0.1:8080" {
				t.Errorf("Addr() = %q", got)
			}
		})
	}
}

func TestParseYAMLOptional(t *testing.T) {
	c, err := ParseYAML([]byte(`
server:
  port: 9000
  prefix: ""
  path: /srv
  headers: []
  workers: 4
  allow_traversal: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Workers != 4 || !c.AllowTraversal {
		t.Errorf("Workers, AllowTraversal = %d, %v", c.Workers, c.AllowTraversal)
	}
	if len(c.Headers) != 1 || c.Headers[0].Name != DefaultHeaderName {
		t.Errorf("Headers = %+v, want only the default header", c.Headers)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "Empty document",
			data:    "",
			wantErr: "config document is empty",
		},
		{
			name:    "Missing server",
			data:    "client:\n  port: 1\n",
			wantErr: "`server` section is missing",
		},
		{
			name:    "Missing port",
			data:    "server:\n  prefix: /\n  path: .\n  headers: []\n",
			wantErr: "`port` should be an integer",
		},
		{
			name:    "String port",
			data:    "server:\n  port: \"8080\"\n  prefix: /\n  path: .\n  headers: []\n",
			wantErr: "`port` should be an integer",
		},
		{
			name:    "Port out of range",
			data:    "server:\n  port: 70000\n  prefix: /\n  path: .\n  headers: []\n",
			wantErr: "`port` should be between 1 and 65535",
		},
		{
			name:    "Prefix not a string",
			data:    "server:\n  port: 80\n  prefix: 1\n  path: .\n  headers: []\n",
			wantErr: "`prefix` must be a string",
		},
		{
			name:    "Missing path",
			data:    "server:\n  port: 80\n  prefix: /\n  headers: []\n",
			wantErr: "`path` must be a string",
		},
		{
			name:    "Missing headers",
			data:    "server:\n  port: 80\n  prefix: /\n  path: .\n",
			wantErr: "`headers` should be an array",
		},
		{
			name:    "Header not a mapping",
			data:    "server:\n  port: 80\n  prefix: /\n  path: .\n  headers:\n    - A: b\n    - plain\n",
			wantErr: "header should be a key-value pair (header index: 2)",
		},
		{
			name:    "Header value not a string",
			data:    "server:\n  port: 80\n  prefix: /\n  path: .\n  headers:\n    - X-Count: 5\n",
			wantErr: "header value should be a string (header index: 1)",
		},
		{
			name:    "Header name not a string",
			data:    "server:\n  port: 80\n  prefix: /\n  path: .\n  headers:\n    - 12: x\n",
			wantErr: "header name should be a string (header index: 1)",
		},
		{
			name:    "Zero workers",
			data:    "server:\n  port: 80\n  prefix: /\n  path: .\n  headers: []\n  workers: 0\n",
			wantErr: "`workers` should be at least 1",
		},
		{
			name:    "Malformed",
			data:    "server: [",
			wantErr: "parsing YAML config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.data))
			if err == nil {
				t.Fatalf("ParseYAML() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseYAML() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseTOMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "Missing server",
			data:    "port = 1\n",
			wantErr: "`server` section is missing",
		},
		{
			name:    "Missing headers",
			data:    "[server]\nport = 80\nprefix = \"/\"\npath = \".\"\n",
			wantErr: "`headers` is required",
		},
		{
			name:    "String port",
			data:    "[server]\nport = \"80\"\nprefix = \"/\"\npath = \".\"\nheaders = []\n",
			wantErr: "parsing TOML config",
		},
		{
			name:    "Two keys in one header",
			data:    "[server]\nport = 80\nprefix = \"/\"\npath = \".\"\nheaders = [{ A = \"1\", B = \"2\" }]\n",
			wantErr: "header should be a key-value pair (header index: 1)",
		},
		{
			name:    "Header value not a string",
			data:    "[server]\nport = 80\nprefix = \"/\"\npath = \".\"\nheaders = [{ A = \"1\" }, { B = 2 }]\n",
			wantErr: "header value should be a string (header index: 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTOML([]byte(tt.data))
			if err == nil {
				t.Fatalf("ParseTOML() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseTOML() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "server.yml")
	tomlPath := filepath.Join(dir, "server.TOML")
	if err := os.WriteFile(yamlPath, []byte(validYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tomlPath, []byte(validTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{yamlPath, tomlPath} {
		c, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q) error: %v", path, err)
		}
		if !reflect.DeepEqual(c.Headers, wantHeaders) {
			t.Errorf("Load(%q) headers = %+v", path, c.Headers)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte(EnvConfigPath+"=/etc/webserver/from-dotenv.yml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.env")

	t.Run("Positional argument wins", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/from/env.yml")
		got, err := ResolvePath([]string{"config.yml"}, "flag.yml", envFile)
		if err != nil || got != "config.yml" {
			t.Errorf("ResolvePath() = %q, %v", got, err)
		}
	})

	t.Run("Flag before environment", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/from/env.yml")
		got, err := ResolvePath(nil, "flag.yml", envFile)
		if err != nil || got != "flag.yml" {
			t.Errorf("ResolvePath() = %q, %v", got, err)
		}
	})

	t.Run("Environment before .env", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/from/env.yml")
		got, err := ResolvePath(nil, "", envFile)
		if err != nil || got != "/from/env.yml" {
			t.Errorf("ResolvePath() = %q, %v", got, err)
		}
	})

	t.Run(".env file", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		got, err := ResolvePath(nil, "", envFile)
		if err != nil || got != "/etc/webserver/from-dotenv.yml" {
			t.Errorf("ResolvePath() = %q, %v", got, err)
		}
	})

	t.Run("Nothing set", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		_, err := ResolvePath(nil, "", missing)
		if err == nil || err.Error() != "path to config file is not set" {
			t.Errorf("ResolvePath() error = %v", err)
		}
	})
}
