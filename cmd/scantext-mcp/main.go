package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ridge/must/v2"

	"github.com/ironsheep/scantext-mcp/internal/config"
	"github.com/ironsheep/scantext-mcp/internal/ocr"
	"github.com/ironsheep/scantext-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("scantext-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Tesseract:  %s\n", ocr.TesseractVersion())
			return
		case "--help", "-h", "help":
			fmt.Println("scantext-mcp - MCP server for interactive text capture")
			fmt.Println()
			fmt.Println("Usage: scantext-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (a .env file is read first):")
			fmt.Printf("  %-28s TOML config file\n", config.EnvConfigFile)
			fmt.Printf("  %-28s Recognition language (default eng)\n", config.EnvLanguage)
			fmt.Printf("  %-28s tesseract or vision\n", config.EnvEngine)
			fmt.Printf("  %-28s Default preview width\n", config.EnvPreviewWidth)
			fmt.Printf("  %-28s Default preview height\n", config.EnvPreviewHeight)
			fmt.Printf("  %-28s Grayscale and contrast before recognition\n", config.EnvPreprocess)
			fmt.Printf("  %-28s Google Cloud Vision service account file\n", config.EnvCredentials)
			fmt.Printf("  %-28s debug, info, warn or error\n", config.EnvLogLevel)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Logging goes to stderr; stdout is for MCP protocol.
	level := must.OK1(config.ParseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Debug("starting scantext-mcp",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"engine", cfg.Engine,
	)

	server.Version = Version
	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	opts := []server.Option{server.WithLogger(logger)}

	if cfg.Engine == config.EngineVision || cfg.Vision.CredentialsFile != "" {
		client := must.OK1(ocr.NewVisionClient(context.Background(), cfg.Vision.CredentialsFile))
		defer client.Close()
		opts = append(opts, server.WithRecognizer(config.EngineVision,
			ocr.NewVision(client, cfg.Vision.MaxRetries, cfg.Vision.RetryInterval.Duration)))
	}

	srv, err := server.New(cfg, opts...)
	if err != nil {
		return err
	}
	return srv.Run()
}
