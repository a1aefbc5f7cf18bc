// Package main is the entry point for the inkstand admin CLI.
// It bootstraps, inspects and resets the content store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/prn-tf/inkstand/internal/app"
	"github.com/prn-tf/inkstand/internal/auth"
	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("inkstand-admin", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(stderr)
	configPath := global.StringP("config", "c", "", "path to the configuration file")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout)
			return 0
		}
		return 2
	}

	if global.NArg() < 1 {
		printUsage(stderr)
		return 1
	}
	command, rest := global.Arg(0), global.Args()[1:]

	switch command {
	case "version":
		fmt.Fprintf(stdout, "inkstand Admin CLI\n")
		fmt.Fprintf(stdout, "Version: %s\n", Version)
		fmt.Fprintf(stdout, "Build Time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "Git Commit: %s\n", GitCommit)
		return 0

	case "help":
		printUsage(stdout)
		return 0

	case "init", "force-init", "reset", "migrate", "analytics", "login":
		if err := withApp(ctx, *configPath, stderr, func(a *app.App) error {
			return dispatch(ctx, a, command, rest, stdout, stderr)
		}); err != nil {
			if !errors.Is(err, errUsage) {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return 1
		}
		return 0

	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 1
	}
}

func withApp(ctx context.Context, configPath string, stderr io.Writer, fn func(*app.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, logger, app.WithRegisterer(prometheus.NewRegistry()))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage backend")
		}
	}()

	return fn(a)
}

func dispatch(ctx context.Context, a *app.App, command string, args []string, stdout, stderr io.Writer) error {
	switch command {
	case "init":
		if err := a.Seeder.Initialize(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Admin system initialized")

	case "force-init":
		if err := a.Seeder.ForceInitialize(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Admin system re-initialized from scratch")

	case "reset":
		a.Seeder.Reset(ctx)
		fmt.Fprintln(stdout, "All admin data removed")

	case "migrate":
		n := a.Repository.MigrateArticles(ctx)
		fmt.Fprintf(stdout, "Migrated %d articles\n", n)

	case "analytics":
		return writeJSON(stdout, a.Analytics.Compute(ctx))

	case "login":
		return login(ctx, a, args, stdout, stderr)
	}
	return nil
}

func login(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var req auth.LoginRequest
	fs.StringVarP(&req.Identifier, "user", "u", "", "username or email")
	fs.StringVarP(&req.Password, "password", "p", "", "password")
	fs.BoolVar(&req.RememberMe, "remember", false, "keep the session for 30 days")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := req.Validate(); err != nil {
		return err
	}

	res, err := a.Auth.Login(ctx, req)
	if err != nil {
		return err
	}
	if err := writeJSON(stdout, res); err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `inkstand Admin CLI

Usage:
  inkstand-admin [--config <file>] <command> [arguments]

Commands:
  init        Create the owner account and seed any empty collections
  force-init  Remove all data, then run init
  reset       Remove all data
  migrate     Upgrade stored articles to the current format
  analytics   Print the dashboard analytics as JSON
  login       Log in as the owner (-u <user or email> -p <password> [--remember])
  version     Print version information
  help        Show this help message

Environment Variables:
  INKSTAND_STORAGE_BACKEND   memory, sqlite, redis, postgres or s3
  ADMIN_EMAIL, ADMIN_USERNAME, ADMIN_PASSWORD
                             Credentials of the bootstrap owner account

Examples:
  inkstand-admin init
  inkstand-admin --config ./configs/config.yaml analytics
  inkstand-admin login -u admin -p 'admin123!' --remember`)
}
