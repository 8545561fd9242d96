package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AuditResultSuccess = "success"
	AuditResultFailure = "failure"
)

// AuditLog records every attempted file operation, successful or not. Rows
// are append-only; nothing in the application updates or deletes them.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	PlanID       string    `bun:",nullzero" json:"plan_id"`
	OperationID  *string   `json:"operation_id,omitempty"`
	Action       string    `bun:",nullzero" json:"action"`
	SourcePath   string    `bun:",nullzero" json:"source_path"`
	TargetPath   string    `bun:",nullzero" json:"target_path"`
	Result       string    `bun:",nullzero" json:"result"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}
