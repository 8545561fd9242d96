package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MediaTypeAudiobook = "audiobook"
	MediaTypeEbook     = "ebook"
	MediaTypeComic     = "comic"
)

const (
	MediaFileStatusPending  = "pending"
	MediaFileStatusReviewed = "reviewed"
	MediaFileStatusApproved = "approved"
	MediaFileStatusApplied  = "applied"
)

type MediaFile struct {
	bun.BaseModel `bun:"table:media_files,alias:mf"`

	ID              string          `bun:",pk,nullzero" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ScanID          string          `bun:",nullzero" json:"scan_id"`
	GroupID         *string         `json:"group_id,omitempty"`
	Group           *AudiobookGroup `bun:"rel:belongs-to,join:group_id=id" json:"group,omitempty"`
	Filepath        string          `bun:",nullzero" json:"filepath"`
	Filename        string          `bun:",nullzero" json:"filename"`
	Extension       string          `bun:",nullzero" json:"extension"`
	MediaType       string          `bun:",nullzero" json:"media_type"`
	Status          string          `bun:",nullzero,default:'pending'" json:"status"`
	FilesizeBytes   int64           `bun:",nullzero" json:"filesize_bytes"`
	DurationSeconds *float64        `json:"duration_seconds"`
	Hash            *string         `json:"hash"`
	TrackNumber     *int            `json:"track_number"`

	// Metadata parsed from the filename and folder structure, possibly
	// merged with embedded audio tags.
	Title           *string  `json:"title"`
	Author          *string  `json:"author"`
	Narrator        *string  `json:"narrator"`
	Series          *string  `json:"series"`
	SeriesIndex     *float64 `json:"series_index"`
	Year            *int     `json:"year"`
	Quality         *string  `json:"quality"`
	ParseConfidence float64  `json:"parse_confidence"`

	// User overrides made during review. The planner prefers these over
	// the parsed values when both are set.
	FinalTitle       *string  `json:"final_title"`
	FinalAuthor      *string  `json:"final_author"`
	FinalNarrator    *string  `json:"final_narrator"`
	FinalSeries      *string  `json:"final_series"`
	FinalSeriesIndex *float64 `json:"final_series_index"`
	FinalYear        *int     `json:"final_year"`
}

// EffectiveTitle returns the final title when set, otherwise the parsed one.
func (f *MediaFile) EffectiveTitle() *string {
	if f.FinalTitle != nil {
		return f.FinalTitle
	}
	return f.Title
}

func (f *MediaFile) EffectiveAuthor() *string {
	if f.FinalAuthor != nil {
		return f.FinalAuthor
	}
	return f.Author
}

func (f *MediaFile) EffectiveNarrator() *string {
	if f.FinalNarrator != nil {
		return f.FinalNarrator
	}
	return f.Narrator
}

func (f *MediaFile) EffectiveSeries() *string {
	if f.FinalSeries != nil {
		return f.FinalSeries
	}
	return f.Series
}

func (f *MediaFile) EffectiveSeriesIndex() *float64 {
	if f.FinalSeriesIndex != nil {
		return f.FinalSeriesIndex
	}
	return f.SeriesIndex
}

func (f *MediaFile) EffectiveYear() *int {
	if f.FinalYear != nil {
		return f.FinalYear
	}
	return f.Year
}
