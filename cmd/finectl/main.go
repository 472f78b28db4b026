// Package main is the command-line companion of the dashboard: dataset
// import, database backups, static chart rendering, data export, and live
// session events.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/fine-dashboard/internal/config"
	"github.com/ramonehamilton/fine-dashboard/internal/version"
)

var (
	configPath string
	dbPath     string
	jsonOutput bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "finectl <command>",
	Short:         "Manage the Was Ross Actually F.I.N.E? dashboard data",
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if dbPath != "" {
			cfg.Data.DBPath = dbPath
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.fine-dashboard/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "views", Title: "Views:"},
	)

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
