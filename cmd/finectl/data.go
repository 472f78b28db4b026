package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/storage"
)

var (
	noBackup    bool
	watchImport bool
)

func openStorage() (*storage.Service, error) {
	dbConfig := storage.DefaultConfig(cfg.Data.DBPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return storage.NewService(db), nil
}

var importCmd = &cobra.Command{
	Use:     "import [dir]",
	Short:   "Replace the stored datasets with the CSV files in dir",
	GroupID: "data",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Data.ImportDir
		if len(args) == 1 {
			dir = args[0]
		}

		if !noBackup {
			if _, err := os.Stat(cfg.Data.DBPath); err == nil {
				path, err := storage.NewBackupManager(cfg.Data.DBPath).Backup(nil)
				if err != nil {
					return fmt.Errorf("backing up before import: %w", err)
				}
				if !jsonOutput {
					fmt.Printf("Backed up current database to %s\n", path)
				}
			}
		}

		svc, err := openStorage()
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := context.Background()
		if err := importDir(ctx, svc, dir); err != nil {
			return err
		}
		if !watchImport {
			return nil
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
		return storage.NewDatasetWatcher(dir, 0).Watch(ctx, func(ctx context.Context) error {
			return importDir(ctx, svc, dir)
		})
	},
}

func importDir(ctx context.Context, svc *storage.Service, dir string) error {
	run, err := svc.ImportDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("importing %s: %w", dir, err)
	}

	if jsonOutput {
		return printJSON(run)
	}
	fmt.Printf("Imported from %s: %d dialogues, %d sentence rows, %d pause rows, %d arguments\n",
		run.Source, run.Dialogues, run.Sentences, run.Pauses, run.FlowEvents)
	return nil
}

var backupCmd = &cobra.Command{
	Use:     "backup",
	Short:   "Write a backup of the database, or list backups",
	GroupID: "data",
	RunE: func(cmd *cobra.Command, args []string) error {
		bm := storage.NewBackupManager(cfg.Data.DBPath)

		if list, _ := cmd.Flags().GetBool("list"); list {
			backups, err := bm.ListBackups("")
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(backups)
			}
			if len(backups) == 0 {
				fmt.Println("No backups.")
				return nil
			}
			for _, b := range backups {
				fmt.Printf("%s  %s  %d bytes  %s\n", b.ModTime.Format("2006-01-02 15:04:05"), b.Name, b.Size, b.Checksum[:min(12, len(b.Checksum))])
			}
			return nil
		}

		name, _ := cmd.Flags().GetString("name")
		path, err := bm.Backup(&storage.BackupConfig{BackupName: name, VerifyBackup: true})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]string{"path": path})
		}
		fmt.Printf("Backup written to %s\n", path)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:     "restore <backup>",
	Short:   "Replace the database with a backup",
	GroupID: "data",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := storage.NewBackupManager(cfg.Data.DBPath).Restore(args[0]); err != nil {
			return err
		}
		fmt.Printf("Restored %s from %s\n", cfg.Data.DBPath, args[0])
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show stored row counts and the loaded snapshot summary",
	GroupID: "data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, err := openStorage()
		if err != nil {
			return err
		}
		defer svc.Close()

		counts, err := svc.Counts(ctx)
		if err != nil {
			return err
		}
		store, err := dataset.Load(ctx, svc, dataset.Options{DialogueWindow: cfg.Story.DialogueWindow})
		if err != nil {
			return err
		}
		runs, err := svc.Datasets().ListImportRuns(ctx, 1)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := map[string]any{"stored": counts, "snapshot": store.Summary()}
			if len(runs) > 0 {
				out["lastImport"] = runs[0]
			}
			return printJSON(out)
		}

		summary := store.Summary()
		var b strings.Builder
		fmt.Fprintf(&b, "Database     %s\n", cfg.Data.DBPath)
		fmt.Fprintf(&b, "Stored rows  %d dialogues, %d sentences, %d pauses, %d arguments\n",
			counts.Dialogues, counts.Sentences, counts.Pauses, counts.FlowEvents)
		fmt.Fprintf(&b, "Snapshot     %d characters, %d locations, %d counterparts\n",
			summary.Characters, summary.Locations, summary.Counterparts)
		fmt.Fprintf(&b, "Skipped      %s", StyleDim.Render(fmt.Sprintf("%d incomplete arguments", summary.Dropped)))
		if len(runs) > 0 {
			fmt.Fprintf(&b, "\nLast import  %s from %s", runs[0].ImportedAt.Format("2006-01-02 15:04:05"), runs[0].Source)
		}
		fmt.Println(renderBox("Dataset status", b.String()))
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the backup taken before replacing data")
	importCmd.Flags().BoolVar(&watchImport, "watch", false, "re-import whenever a CSV file in dir changes")
	backupCmd.Flags().Bool("list", false, "list existing backups")
	backupCmd.Flags().String("name", "", "backup file name without extension")
}
