package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Well-known setting keys.
const (
	SettingLibraryRoot             = "library_root"
	SettingOutputRoot              = "output_root"
	SettingAudiobookFolderTemplate = "audiobook_folder_template"
	SettingAudiobookFileTemplate   = "audiobook_file_template"
	SettingExcludedPaths           = "excluded_paths"
)

type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:st"`

	Key       string    `bun:",pk,nullzero" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
