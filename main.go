package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/bookworm/internal/cli"
	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entrypoint"
	"github.com/mrlokans/bookworm/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	logging.Setup(cfg.Log.Level)

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		if err := entrypoint.Run(cfg, Version); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	command := os.Args[1]
	switch command {
	case "version", "-version", "--version":
		fmt.Printf("bookworm %s (%s)\n", Version, Commit)
		return
	case "help", "-h", "-help", "--help":
		usage()
		return
	}

	cmd, ok := cli.Lookup(command)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage()
		os.Exit(2)
	}
	if err := cmd.ParseFlags(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands: %s\n\n", strings.Join(cli.Names(), ", "))
	fmt.Fprintf(os.Stderr, "Run '%s <command> -h' for command options.\n", os.Args[0])
}
