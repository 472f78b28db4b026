package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
)

// Dataset file names expected inside an import directory.
const (
	DialogueSentimentsFile = "dialogue_sentiments.csv"
	SentenceTypesFile      = "sentence_types.csv"
	ModalityPausesFile     = "modality_pauses.csv"
	FlowEventsFile         = "fight_scenes.csv"
)

// ErrMissingColumn is returned when a CSV file lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// ReadDatasetDir reads the four dataset CSV files from dir.
func ReadDatasetDir(dir string) (*models.Dataset, error) {
	data := &models.Dataset{}

	var err error
	if data.Dialogues, err = readFile(filepath.Join(dir, DialogueSentimentsFile), ReadDialogueSentiments); err != nil {
		return nil, err
	}
	if data.Sentences, err = readFile(filepath.Join(dir, SentenceTypesFile), ReadSentenceTypes); err != nil {
		return nil, err
	}
	if data.Pauses, err = readFile(filepath.Join(dir, ModalityPausesFile), ReadModalityPauses); err != nil {
		return nil, err
	}
	if data.FlowEvents, err = readFile(filepath.Join(dir, FlowEventsFile), ReadFlowEvents); err != nil {
		return nil, err
	}

	return data, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// ReadDialogueSentiments parses the "Dialogue Sentiments" sheet exported as CSV.
func ReadDialogueSentiments(r io.Reader) ([]*models.DialogueSentiment, error) {
	sheet, err := readSheet(r, "person", "dialogue", "forced positivity", "discomfort", "suppressed frustration", "fine", "oh", "okay")
	if err != nil {
		return nil, err
	}

	out := make([]*models.DialogueSentiment, 0, len(sheet.records))
	for i, rec := range sheet.records {
		d := &models.DialogueSentiment{
			Person:   sheet.text(rec, "person"),
			Dialogue: sheet.optionalText(rec, "dialogue"),
		}
		if d.ForcedPositivity, err = sheet.float(rec, "forced positivity"); err != nil {
			return nil, rowError(i, err)
		}
		if d.Discomfort, err = sheet.float(rec, "discomfort"); err != nil {
			return nil, rowError(i, err)
		}
		if d.SuppressedFrustration, err = sheet.float(rec, "suppressed frustration"); err != nil {
			return nil, rowError(i, err)
		}
		if d.Fine, err = sheet.optionalInt(rec, "fine"); err != nil {
			return nil, rowError(i, err)
		}
		if d.Oh, err = sheet.optionalInt(rec, "oh"); err != nil {
			return nil, rowError(i, err)
		}
		if d.Okay, err = sheet.optionalInt(rec, "okay"); err != nil {
			return nil, rowError(i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ReadSentenceTypes parses the "Sentence Types" sheet exported as CSV.
func ReadSentenceTypes(r io.Reader) ([]*models.SentenceType, error) {
	sheet, err := readSheet(r, "person", "declarative", "interrogative", "exclamatory")
	if err != nil {
		return nil, err
	}

	out := make([]*models.SentenceType, 0, len(sheet.records))
	for i, rec := range sheet.records {
		s := &models.SentenceType{Person: sheet.text(rec, "person")}
		if s.Declarative, err = sheet.float(rec, "declarative"); err != nil {
			return nil, rowError(i, err)
		}
		if s.Interrogative, err = sheet.float(rec, "interrogative"); err != nil {
			return nil, rowError(i, err)
		}
		if s.Exclamatory, err = sheet.float(rec, "exclamatory"); err != nil {
			return nil, rowError(i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// ReadModalityPauses parses the "Modality & Pauses" sheet exported as CSV.
func ReadModalityPauses(r io.Reader) ([]*models.ModalityPause, error) {
	sheet, err := readSheet(r, "person", "pauses")
	if err != nil {
		return nil, err
	}

	out := make([]*models.ModalityPause, 0, len(sheet.records))
	for i, rec := range sheet.records {
		p := &models.ModalityPause{Person: sheet.text(rec, "person")}
		n, err := sheet.optionalInt(rec, "pauses")
		if err != nil {
			return nil, rowError(i, err)
		}
		if n != nil {
			p.Pauses = *n
		}
		out = append(out, p)
	}
	return out, nil
}

// ReadFlowEvents parses the argument log. Blank cells are kept as nil so the
// dataset store can drop incomplete rows.
func ReadFlowEvents(r io.Reader) ([]*models.FlowEventRow, error) {
	sheet, err := readSheet(r, "season", "location", "character_fought_with")
	if err != nil {
		return nil, err
	}

	out := make([]*models.FlowEventRow, 0, len(sheet.records))
	for _, rec := range sheet.records {
		out = append(out, &models.FlowEventRow{
			Season:      sheet.optionalText(rec, "season"),
			Location:    sheet.optionalText(rec, "location"),
			Counterpart: sheet.optionalText(rec, "character_fought_with"),
		})
	}
	return out, nil
}

// sheet is a parsed CSV file with a header row.
type sheet struct {
	columns map[string]int
	records [][]string
}

func readSheet(r io.Reader, required ...string) (*sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	s := &sheet{columns: make(map[string]int, len(header))}
	for i, name := range header {
		s.columns[headerKey(name)] = i
	}
	for _, name := range required {
		if _, ok := s.columns[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	s.records, err = reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return s, nil
}

func headerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func (s *sheet) cell(rec []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (s *sheet) text(rec []string, column string) string {
	return s.cell(rec, column)
}

func (s *sheet) optionalText(rec []string, column string) *string {
	v := s.cell(rec, column)
	if v == "" {
		return nil
	}
	return &v
}

func (s *sheet) float(rec []string, column string) (float64, error) {
	v := s.cell(rec, column)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", column, err)
	}
	return f, nil
}

func (s *sheet) optionalInt(rec []string, column string) (*int, error) {
	v := s.cell(rec, column)
	if v == "" {
		return nil, nil
	}
	// Spreadsheet exports write whole numbers as "1.0".
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", column, err)
	}
	n := int(f)
	return &n, nil
}

func rowError(i int, err error) error {
	// +2: one for the header row, one for 1-based numbering
	return fmt.Errorf("row %d: %w", i+2, err)
}
