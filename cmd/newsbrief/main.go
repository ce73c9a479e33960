package main

import (
	"context"
	"fmt"
	"os"

	"newsbrief/internal/app"
	"newsbrief/internal/config"
	"newsbrief/internal/logging"
)

func help() {
	fmt.Println("newsbrief")
	fmt.Println()
	fmt.Println("Collects AI news, ranks it with a language model, and emails a digest.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsbrief --once   Run the full pipeline and send the email")
	fmt.Println("  newsbrief --test   Run the pipeline but print a preview instead of sending")
}

func main() {
	args := os.Args[1:]

	var dryRun bool
	switch {
	case len(args) == 1 && args[0] == "--once":
		dryRun = false
	case len(args) == 1 && args[0] == "--test":
		dryRun = true
	case len(args) == 1 && (args[0] == "--help" || args[0] == "-h"):
		help()
		return
	default:
		fmt.Fprintf(os.Stderr, "error: expected exactly one of --once or --test\n\n")
		help()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	application := app.New(cfg, logger)

	if err := application.Run(context.Background(), dryRun); err != nil {
		logger.Error("newsletter run failed", "error", err)
		os.Exit(1)
	}
}
