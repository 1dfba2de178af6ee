// Package main runs a static file server configured from a YAML or TOML file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/f4ah6o/webserver/internal/config"
	"github.com/f4ah6o/webserver/internal/console"
	"github.com/f4ah6o/webserver/internal/server"
)

const banner = `
    ____             __     _       __     __   _____
   / __ \__  _______/ /_   | |     / /__  / /_ / ___/___  ______   _____  _____
  / /_/ / / / / ___/ __/   | | /| / / _ \/ __ \\__ \/ _ \/ ___/ | / / _ \/ ___/
 / _, _/ /_/ (__  ) /_     | |/ |/ /  __/ /_/ /__/ /  __/ /   | |/ /  __/ /
/_/ |_|\__,_/____/\__/     |__/|__/\___/_.___/____/\___/_/    |___/\___/_/
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// Restore default signal handling once shutdown starts, so a second
	// Ctrl+C kills the process.
	context.AfterFunc(ctx, stop)

	code := run(ctx, os.Args[1:], color.Output, color.Error)
	stop()
	os.Exit(code)
}

// run starts the server and blocks until ctx is done. It returns the process
// exit code: 0 after a shutdown, 1 on a config or bind failure, 2 on bad flags.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("webserver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to the config file (.yml/.yaml or .toml)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-config path] [path]\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	p := console.New(stdout, stderr)
	p.Banner(banner)

	path, err := config.ResolvePath(fs.Args(), *configPath, ".env")
	if err != nil {
		p.Errorf("%v", err)
		return 1
	}

	cfg, err := config.Load(path)
	if err != nil {
		p.Errorf("Invalid config %s: %v", path, err)
		return 1
	}

	if err := server.New(cfg, p).ListenAndServe(ctx); err != nil {
		return 1
	}
	return 0
}
