package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ai-chef-service/internal/cli"
	"ai-chef-service/internal/core/ai/gemini"
	"ai-chef-service/internal/core/recipe"
	"ai-chef-service/internal/infrastructure/config"

	"github.com/joho/godotenv"
)

// overridden during build with ldflags
var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := func() (cli.Generator, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		// CLI 沒有 pantry 服務，快照由檔案提供
		return recipe.NewService(gemini.NewClient(cfg.Gemini), nil, cfg.Generation), nil
	}

	if err := cli.NewApp(version, factory, os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
