package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ramonehamilton/fine-dashboard/internal/config"
	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/progress"
	"github.com/ramonehamilton/fine-dashboard/internal/session"
	"github.com/ramonehamilton/fine-dashboard/internal/storage"
	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
)

// Runtime is an opened database plus the services built from its snapshot.
type Runtime struct {
	Storage  *storage.Service
	Services *Services

	// Imported is set when the dataset was imported during Bootstrap.
	Imported *models.ImportRun
}

// Bootstrap opens the database, imports the CSV datasets into an empty
// database when configured to, and loads the read-only snapshot.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dbConfig := storage.DefaultConfig(cfg.Data.DBPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewService(db)

	rt := &Runtime{Storage: store}
	if cfg.Data.AutoImport {
		if rt.Imported, err = autoImport(ctx, store, cfg.Data.ImportDir); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	snapshot, err := dataset.Load(ctx, store, dataset.Options{DialogueWindow: cfg.Story.DialogueWindow})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	idleTTL, _ := cfg.GetIdleTTL()
	rt.Services = NewServices(snapshot, Options{
		Characters: cfg.Story.Characters,
		Progress: progress.Config{
			TrackedCharacter: cfg.Story.TrackedCharacter,
			Step:             cfg.Story.ProgressStep,
			Max:              cfg.Story.MaxProgress,
		},
		Sessions: session.Config{
			IdleTTL:     idleTTL,
			MaxSessions: cfg.Sessions.MaxSessions,
		},
	})

	if cfg.App.DebugMode {
		rt.Services.Dispatcher.Register(events.NewLoggingObserver(true))
	}
	if run := rt.Imported; run != nil {
		rt.Services.Dispatcher.Dispatch(events.NewTypedEvent(ctx, events.DatasetImported, "", events.DatasetImportedEvent{
			Source:     run.Source,
			Dialogues:  run.Dialogues,
			Sentences:  run.Sentences,
			Pauses:     run.Pauses,
			FlowEvents: run.FlowEvents,
		}))
	}

	return rt, nil
}

// autoImport imports dir when the database holds no rows. A missing dir is
// not an error; the dashboard then starts with empty charts.
func autoImport(ctx context.Context, store *storage.Service, dir string) (*models.ImportRun, error) {
	counts, err := store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count dataset rows: %w", err)
	}
	if !counts.Empty() {
		return nil, nil
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		log.Printf("[Dashboard] Database is empty and import dir %s does not exist", dir)
		return nil, nil
	}

	run, err := store.ImportDir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", dir, err)
	}
	log.Printf("[Dashboard] Imported %d dialogues, %d sentences, %d pauses, %d arguments from %s",
		run.Dialogues, run.Sentences, run.Pauses, run.FlowEvents, dir)
	return run, nil
}

// Close closes the database.
func (rt *Runtime) Close() error {
	return rt.Storage.Close()
}
