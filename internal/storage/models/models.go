package models

import "time"

// DialogueSentiment is one annotated line of dialogue for a character.
type DialogueSentiment struct {
	ID                    int64
	Person                string
	Dialogue              *string // Nullable: some rows carry only sentiment scores
	ForcedPositivity      float64
	Discomfort            float64
	SuppressedFrustration float64
	Fine                  *int // Nullable filler counts, read as zero
	Oh                    *int
	Okay                  *int
}

// SentenceType holds the sentence-type scores for one line of a character.
type SentenceType struct {
	ID            int64
	Person        string
	Declarative   float64
	Interrogative float64
	Exclamatory   float64
}

// ModalityPause marks whether a line of a character contains a pause.
type ModalityPause struct {
	ID     int64
	Person string
	Pauses int // 1 when the line has a pause
}

// FlowEventRow is one recorded argument as stored. Any column may be missing
// in the source sheet.
type FlowEventRow struct {
	ID          int64
	Season      *string
	Location    *string
	Counterpart *string
}

// ImportRun records one dataset import.
type ImportRun struct {
	ID         int64
	Source     string
	Dialogues  int
	Sentences  int
	Pauses     int
	FlowEvents int
	ImportedAt time.Time
}

// DatasetCounts summarizes the number of rows per table.
type DatasetCounts struct {
	Dialogues  int `json:"dialogues"`
	Sentences  int `json:"sentences"`
	Pauses     int `json:"pauses"`
	FlowEvents int `json:"flowEvents"`
}

// Empty reports whether no dataset rows are stored.
func (c DatasetCounts) Empty() bool {
	return c.Dialogues == 0 && c.Sentences == 0 && c.Pauses == 0 && c.FlowEvents == 0
}

// Dataset bundles the rows of all four tables for bulk import.
type Dataset struct {
	Dialogues  []*DialogueSentiment
	Sentences  []*SentenceType
	Pauses     []*ModalityPause
	FlowEvents []*FlowEventRow
}

// Counts returns the number of rows per table.
func (d *Dataset) Counts() DatasetCounts {
	return DatasetCounts{
		Dialogues:  len(d.Dialogues),
		Sentences:  len(d.Sentences),
		Pauses:     len(d.Pauses),
		FlowEvents: len(d.FlowEvents),
	}
}
