package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	ScanStatusPending     = "pending"
	ScanStatusDiscovering = "discovering"
	ScanStatusGrouping    = "grouping"
	ScanStatusProcessing  = "processing"
	ScanStatusCompleted   = "completed"
	ScanStatusFailed      = "failed"
)

type Scan struct {
	bun.BaseModel `bun:"table:scans,alias:s"`

	ID               string      `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	RootPath         string      `bun:",nullzero" json:"root_path"`
	Status           string      `bun:",nullzero" json:"status"`
	CurrentFolder    *string     `json:"current_folder,omitempty"`
	FilesDiscovered  int         `json:"files_discovered"`
	GroupsDiscovered int         `json:"groups_discovered"`
	Errors           string      `bun:",nullzero" json:"-"`
	ErrorsParsed     []ScanError `bun:"-" json:"errors"`
	StartedAt        *time.Time  `json:"started_at"`
	CompletedAt      *time.Time  `json:"completed_at"`
}

// ScanError records a path that couldn't be read during discovery. Scans
// don't abort on unreadable folders; the errors are carried on the scan
// itself so the caller can see what was skipped.
type ScanError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (s *Scan) UnmarshalErrors() error {
	s.ErrorsParsed = []ScanError{}
	if s.Errors == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s.Errors), &s.ErrorsParsed); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (s *Scan) MarshalErrors() error {
	b, err := json.Marshal(s.ErrorsParsed)
	if err != nil {
		return errors.WithStack(err)
	}
	s.Errors = string(b)
	return nil
}
