// Package main runs the dashboard's REST and WebSocket server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/fine-dashboard/internal/api"
	"github.com/ramonehamilton/fine-dashboard/internal/config"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
	"github.com/ramonehamilton/fine-dashboard/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.fine-dashboard/config.toml)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	importDir  = flag.String("import-dir", "", "CSV dataset directory (overrides config)")
	debug      = flag.Bool("debug", false, "Log every domain event")
	open       = flag.Bool("open", false, "Open the dashboard in a browser")
)

func main() {
	flag.Parse()

	fmt.Printf("Was Ross Actually F.I.N.E? - dashboard server %s\n", version.GetVersion())
	fmt.Println("=================================================")
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := dashboard.Bootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start dashboard: %v", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	summary := rt.Services.Store.Summary()
	fmt.Printf("Database: %s\n", cfg.Data.DBPath)
	fmt.Printf("Loaded %d dialogues for %d characters, %d arguments (%d incomplete rows skipped)\n",
		summary.Dialogues, summary.Characters, summary.FlowEvents, summary.Dropped)

	sweepInterval, _ := cfg.GetSweepInterval()
	go rt.Services.Sessions.Run(ctx, sweepInterval)

	requestTimeout, _ := cfg.GetRequestTimeout()
	frontendURL := cfg.Server.FrontendURL
	if *open && frontendURL == "" {
		frontendURL = fmt.Sprintf("http://localhost:%d/api/v1/flow/diagram.html", cfg.Server.Port)
	}

	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		OpenBrowser:    cfg.Server.OpenBrowser || *open,
		FrontendURL:    frontendURL,
		RequestTimeout: requestTimeout,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	}, rt.Services, api.NewFacades(rt.Services))

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", server.Port())
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("Dashboard stopped.")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Data.DBPath = *dbPath
	}
	if *importDir != "" {
		cfg.Data.ImportDir = *importDir
	}
	if *debug {
		cfg.App.DebugMode = true
	}

	return cfg, cfg.Validate()
}
