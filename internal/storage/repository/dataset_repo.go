package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
)

// DatasetRepository handles database operations for the dashboard datasets.
type DatasetRepository interface {
	// ListDialogues returns all dialogue sentiment rows in insertion order.
	ListDialogues(ctx context.Context) ([]*models.DialogueSentiment, error)

	// ListSentenceTypes returns all sentence-type rows in insertion order.
	ListSentenceTypes(ctx context.Context) ([]*models.SentenceType, error)

	// ListModalityPauses returns all pause rows in insertion order.
	ListModalityPauses(ctx context.Context) ([]*models.ModalityPause, error)

	// ListFlowEvents returns all argument rows in insertion order, incomplete rows included.
	ListFlowEvents(ctx context.Context) ([]*models.FlowEventRow, error)

	// Counts returns the number of rows in each dataset table.
	Counts(ctx context.Context) (models.DatasetCounts, error)

	// ReplaceAll swaps the stored datasets for the given ones in a single transaction
	// and records the import run.
	ReplaceAll(ctx context.Context, source string, data *models.Dataset) (*models.ImportRun, error)

	// ListImportRuns returns the most recent import runs, newest first.
	ListImportRuns(ctx context.Context, limit int) ([]*models.ImportRun, error)
}

// datasetRepository is the concrete implementation of DatasetRepository.
type datasetRepository struct {
	db *sql.DB
}

// NewDatasetRepository creates a new dataset repository.
func NewDatasetRepository(db *sql.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

// ListDialogues returns all dialogue sentiment rows in insertion order.
func (r *datasetRepository) ListDialogues(ctx context.Context) ([]*models.DialogueSentiment, error) {
	query := `
		SELECT id, person, dialogue, forced_positivity, discomfort, suppressed_frustration, fine, oh, okay
		FROM dialogue_sentiments
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*models.DialogueSentiment
	for rows.Next() {
		d := &models.DialogueSentiment{}
		var dialogue sql.NullString
		var fine, oh, okay sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.Person, &dialogue,
			&d.ForcedPositivity, &d.Discomfort, &d.SuppressedFrustration,
			&fine, &oh, &okay,
		); err != nil {
			return nil, err
		}
		if dialogue.Valid {
			d.Dialogue = &dialogue.String
		}
		d.Fine = nullableInt(fine)
		d.Oh = nullableInt(oh)
		d.Okay = nullableInt(okay)
		out = append(out, d)
	}

	return out, rows.Err()
}

// ListSentenceTypes returns all sentence-type rows in insertion order.
func (r *datasetRepository) ListSentenceTypes(ctx context.Context) ([]*models.SentenceType, error) {
	query := `
		SELECT id, person, declarative, interrogative, exclamatory
		FROM sentence_types
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*models.SentenceType
	for rows.Next() {
		s := &models.SentenceType{}
		if err := rows.Scan(&s.ID, &s.Person, &s.Declarative, &s.Interrogative, &s.Exclamatory); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// ListModalityPauses returns all pause rows in insertion order.
func (r *datasetRepository) ListModalityPauses(ctx context.Context) ([]*models.ModalityPause, error) {
	query := `
		SELECT id, person, pauses
		FROM modality_pauses
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*models.ModalityPause
	for rows.Next() {
		p := &models.ModalityPause{}
		if err := rows.Scan(&p.ID, &p.Person, &p.Pauses); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// ListFlowEvents returns all argument rows in insertion order.
func (r *datasetRepository) ListFlowEvents(ctx context.Context) ([]*models.FlowEventRow, error) {
	query := `
		SELECT id, season, location, counterpart
		FROM flow_events
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*models.FlowEventRow
	for rows.Next() {
		e := &models.FlowEventRow{}
		var season, location, counterpart sql.NullString
		if err := rows.Scan(&e.ID, &season, &location, &counterpart); err != nil {
			return nil, err
		}
		e.Season = nullableString(season)
		e.Location = nullableString(location)
		e.Counterpart = nullableString(counterpart)
		out = append(out, e)
	}

	return out, rows.Err()
}

// Counts returns the number of rows in each dataset table.
func (r *datasetRepository) Counts(ctx context.Context) (models.DatasetCounts, error) {
	var c models.DatasetCounts
	query := `
		SELECT
			(SELECT COUNT(*) FROM dialogue_sentiments),
			(SELECT COUNT(*) FROM sentence_types),
			(SELECT COUNT(*) FROM modality_pauses),
			(SELECT COUNT(*) FROM flow_events)
	`
	err := r.db.QueryRowContext(ctx, query).Scan(&c.Dialogues, &c.Sentences, &c.Pauses, &c.FlowEvents)
	return c, err
}

// ReplaceAll swaps the stored datasets for the given ones in a single transaction.
func (r *datasetRepository) ReplaceAll(ctx context.Context, source string, data *models.Dataset) (run *models.ImportRun, err error) {
	if data == nil {
		return nil, fmt.Errorf("dataset cannot be nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"dialogue_sentiments", "sentence_types", "modality_pauses", "flow_events"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err = insertDialogues(ctx, tx, data.Dialogues); err != nil {
		return nil, err
	}
	if err = insertSentenceTypes(ctx, tx, data.Sentences); err != nil {
		return nil, err
	}
	if err = insertModalityPauses(ctx, tx, data.Pauses); err != nil {
		return nil, err
	}
	if err = insertFlowEvents(ctx, tx, data.FlowEvents); err != nil {
		return nil, err
	}

	counts := data.Counts()
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO import_runs (source, dialogues, sentences, pauses, flow_events, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, source, counts.Dialogues, counts.Sentences, counts.Pauses, counts.FlowEvents,
		now.Format("2006-01-02 15:04:05.999999"))
	if err != nil {
		return nil, fmt.Errorf("failed to record import run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ImportRun{
		ID:         id,
		Source:     source,
		Dialogues:  counts.Dialogues,
		Sentences:  counts.Sentences,
		Pauses:     counts.Pauses,
		FlowEvents: counts.FlowEvents,
		ImportedAt: now,
	}, nil
}

// ListImportRuns returns the most recent import runs, newest first.
func (r *datasetRepository) ListImportRuns(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, source, dialogues, sentences, pauses, flow_events, imported_at
		FROM import_runs
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []*models.ImportRun
	for rows.Next() {
		run := &models.ImportRun{}
		var importedAt string
		if err := rows.Scan(&run.ID, &run.Source, &run.Dialogues, &run.Sentences, &run.Pauses, &run.FlowEvents, &importedAt); err != nil {
			return nil, err
		}
		run.ImportedAt = parseTimestamp(importedAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func insertDialogues(ctx context.Context, tx *sql.Tx, rows []*models.DialogueSentiment) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dialogue_sentiments (person, dialogue, forced_positivity, discomfort, suppressed_frustration, fine, oh, okay)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare dialogue insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range rows {
		if _, err := stmt.ExecContext(ctx,
			d.Person, d.Dialogue,
			d.ForcedPositivity, d.Discomfort, d.SuppressedFrustration,
			d.Fine, d.Oh, d.Okay,
		); err != nil {
			return fmt.Errorf("failed to insert dialogue for %s: %w", d.Person, err)
		}
	}
	return nil
}

func insertSentenceTypes(ctx context.Context, tx *sql.Tx, rows []*models.SentenceType) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sentence_types (person, declarative, interrogative, exclamatory)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sentence type insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range rows {
		if _, err := stmt.ExecContext(ctx, s.Person, s.Declarative, s.Interrogative, s.Exclamatory); err != nil {
			return fmt.Errorf("failed to insert sentence type for %s: %w", s.Person, err)
		}
	}
	return nil
}

func insertModalityPauses(ctx context.Context, tx *sql.Tx, rows []*models.ModalityPause) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO modality_pauses (person, pauses)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare pause insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range rows {
		if _, err := stmt.ExecContext(ctx, p.Person, p.Pauses); err != nil {
			return fmt.Errorf("failed to insert pause for %s: %w", p.Person, err)
		}
	}
	return nil
}

func insertFlowEvents(ctx context.Context, tx *sql.Tx, rows []*models.FlowEventRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO flow_events (season, location, counterpart)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare flow event insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range rows {
		if _, err := stmt.ExecContext(ctx, e.Season, e.Location, e.Counterpart); err != nil {
			return fmt.Errorf("failed to insert flow event: %w", err)
		}
	}
	return nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// parseTimestamp accepts the formats SQLite hands back for DATETIME columns.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
