package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AudiobookGroupStatusPending  = "pending"
	AudiobookGroupStatusReviewed = "reviewed"
	AudiobookGroupStatusApproved = "approved"
	AudiobookGroupStatusApplied  = "applied"
)

// AudiobookGroup is a multi-file audiobook: every audio file in a single
// folder that holds two or more of them. Metadata is consolidated from the
// primary file's tags and the folder path.
type AudiobookGroup struct {
	bun.BaseModel `bun:"table:audiobook_groups,alias:ag"`

	ID                   string       `bun:",pk,nullzero" json:"id"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
	ScanID               string       `bun:",nullzero" json:"scan_id"`
	FolderPath           string       `bun:",nullzero" json:"folder_path"`
	Status               string       `bun:",nullzero,default:'pending'" json:"status"`
	PrimaryFileID        *string      `json:"primary_file_id,omitempty"`
	FileCount            int          `json:"file_count"`
	TotalDurationSeconds *float64     `json:"total_duration_seconds"`
	Files                []*MediaFile `bun:"rel:has-many,join:id=group_id" json:"files,omitempty"`

	Title       *string  `json:"title"`
	Author      *string  `json:"author"`
	Narrator    *string  `json:"narrator"`
	Series      *string  `json:"series"`
	SeriesIndex *float64 `json:"series_index"`
	Year        *int     `json:"year"`
	Confidence  float64  `json:"confidence"`
}
