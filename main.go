package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/library/internal/cli"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run(ctx context.Context) error
}

func main() {
	// If no arguments or "serve" command, run the API server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(config.NewConfig(), Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]
	cfg := config.NewConfig()
	env := cli.NewEnv(cfg.Client)

	var cmd command
	switch name {
	case "web":
		entrypoint.RunWeb(cfg, Version)
		return
	case "login":
		cmd = cli.NewLoginCommand(env)
	case "logout":
		cmd = cli.NewLogoutCommand(env)
	case "books":
		cmd = cli.NewBooksCommand(env)
	case "version":
		fmt.Printf("library %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve    Start the API server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  web      Start the web UI, backed by the API server\n")
	fmt.Fprintf(os.Stderr, "  login    Log in (or register with -register) and store the token\n")
	fmt.Fprintf(os.Stderr, "  logout   Revoke and forget the stored token\n")
	fmt.Fprintf(os.Stderr, "  books    Manage books: list, get, add, edit, delete\n")
	fmt.Fprintf(os.Stderr, "  version  Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
