package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	// OperationTypeRename is a rename within the same parent directory.
	OperationTypeRename = "rename"
	// OperationTypeMove is a move across directories on the same volume.
	OperationTypeMove = "move"
	// OperationTypeCopyDelete is a copy to another volume followed by a
	// verified delete of the source.
	OperationTypeCopyDelete = "copy_then_delete"
)

const (
	OperationStatusPending    = "pending"
	OperationStatusCompleted  = "completed"
	OperationStatusFailed     = "failed"
	OperationStatusSkipped    = "skipped"
	OperationStatusRolledBack = "rolled_back"
)

type PlannedOperation struct {
	bun.BaseModel `bun:"table:planned_operations,alias:po"`

	ID             string    `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	PlanID         string    `bun:",nullzero" json:"plan_id"`
	MediaFileID    *string   `json:"media_file_id,omitempty"`
	GroupID        *string   `json:"group_id,omitempty"`
	Type           string    `bun:",nullzero" json:"type"`
	Status         string    `bun:",nullzero,default:'pending'" json:"status"`
	SourcePath     string    `bun:",nullzero" json:"source_path"`
	TargetPath     string    `bun:",nullzero" json:"target_path"`
	SourceHash     *string   `json:"source_hash"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	ExecutionOrder int       `json:"execution_order"`
}
