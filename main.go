// Command caliper serves the geometry API, or evaluates a script when
// given -script.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/caliper/pkg/config"
	"github.com/chazu/caliper/pkg/logging"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Error("caliper", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("caliper", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "path to caliper.toml")
	script := fs.String("script", "", "evaluate a script file and print its report")
	addr := fs.String("addr", "", "listen address, overrides server.addr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	app := NewApp(cfg)

	if *script != "" {
		return runScript(app, *script)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Serve(ctx)
	})
	if *cfgPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, *cfgPath, func(c *config.Config) {
				if *addr != "" {
					c.Server.Addr = *addr
				}
				app.Reconfigure(c)
			})
		})
	}
	return g.Wait()
}

func runScript(app *App, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	result := app.Evaluate(string(src))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: %d evaluation error(s)", path, len(result.Errors))
	}
	return nil
}
