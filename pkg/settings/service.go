package settings

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"

	"github.com/shelforg/shelforg/pkg/models"
)

// Settings is the flattened view of the settings table. Unset keys come
// back as zero values; the organizer config supplies naming template
// defaults when these are empty.
type Settings struct {
	LibraryRoot             string   `json:"library_root"`
	OutputRoot              string   `json:"output_root"`
	AudiobookFolderTemplate string   `json:"audiobook_folder_template"`
	AudiobookFileTemplate   string   `json:"audiobook_file_template"`
	ExcludedPaths           []string `json:"excluded_paths"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

func (svc *Service) Retrieve(ctx context.Context) (*Settings, error) {
	rows := []*models.Setting{}
	err := svc.db.NewSelect().
		Model(&rows).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	settings := &Settings{ExcludedPaths: []string{}}
	for _, row := range rows {
		switch row.Key {
		case models.SettingLibraryRoot:
			settings.LibraryRoot = row.Value
		case models.SettingOutputRoot:
			settings.OutputRoot = row.Value
		case models.SettingAudiobookFolderTemplate:
			settings.AudiobookFolderTemplate = row.Value
		case models.SettingAudiobookFileTemplate:
			settings.AudiobookFileTemplate = row.Value
		case models.SettingExcludedPaths:
			if row.Value != "" {
				if err := json.Unmarshal([]byte(row.Value), &settings.ExcludedPaths); err != nil {
					return nil, errors.WithStack(err)
				}
			}
		}
	}

	return settings, nil
}

// Set upserts a single setting key.
func (svc *Service) Set(ctx context.Context, key, value string) error {
	setting := &models.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	_, err := svc.db.NewInsert().
		Model(setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// SetExcludedPaths stores the exclusion list as a JSON array.
func (svc *Service) SetExcludedPaths(ctx context.Context, paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return errors.WithStack(err)
	}
	return svc.Set(ctx, models.SettingExcludedPaths, string(data))
}
