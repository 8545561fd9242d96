package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	PlanStatusDraft      = "draft"
	PlanStatusReady      = "ready"
	PlanStatusApplying   = "applying"
	PlanStatusCompleted  = "completed"
	PlanStatusFailed     = "failed"
	PlanStatusRolledBack = "rolled_back"
)

// Plan is a reviewable set of file operations generated from a completed
// scan. Nothing on disk changes until the plan is applied.
type Plan struct {
	bun.BaseModel `bun:"table:plans,alias:p"`

	ID               string              `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	ScanID           string              `bun:",nullzero" json:"scan_id"`
	OutputRoot       string              `bun:",nullzero" json:"output_root"`
	Status           string              `bun:",nullzero" json:"status"`
	OperationCount   int                 `json:"operation_count"`
	CompletedCount   int                 `json:"completed_count"`
	Warnings         string              `bun:",nullzero" json:"-"`
	WarningsParsed   []string            `bun:"-" json:"warnings"`
	Collisions       string              `bun:",nullzero" json:"-"`
	CollisionsParsed []string            `bun:"-" json:"collisions"`
	Duplicates       string              `bun:",nullzero" json:"-"`
	DuplicatesParsed []string            `bun:"-" json:"duplicates"`
	Operations       []*PlannedOperation `bun:"rel:has-many,join:id=plan_id" json:"operations,omitempty"`
}

func (p *Plan) UnmarshalLists() error {
	for _, pair := range []struct {
		raw    string
		parsed *[]string
	}{
		{p.Warnings, &p.WarningsParsed},
		{p.Collisions, &p.CollisionsParsed},
		{p.Duplicates, &p.DuplicatesParsed},
	} {
		*pair.parsed = []string{}
		if pair.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(pair.raw), pair.parsed); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (p *Plan) MarshalLists() error {
	for _, pair := range []struct {
		parsed []string
		raw    *string
	}{
		{p.WarningsParsed, &p.Warnings},
		{p.CollisionsParsed, &p.Collisions},
		{p.DuplicatesParsed, &p.Duplicates},
	} {
		b, err := json.Marshal(pair.parsed)
		if err != nil {
			return errors.WithStack(err)
		}
		*pair.raw = string(b)
	}
	return nil
}
