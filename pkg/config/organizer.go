package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// OrganizerConfig holds the scan and naming tunables. Values come from
// organizer.yaml in the config directory, overridable with SHELFORG_
// environment variables (e.g. SHELFORG_SCAN__VERIFY_AUDIO_DURATION=true).
type OrganizerConfig struct {
	Scan struct {
		AudioExtensions       []string      `koanf:"audio_extensions"`
		EbookExtensions       []string      `koanf:"ebook_extensions"`
		ComicExtensions       []string      `koanf:"comic_extensions"`
		AudiobookFolderMarker string        `koanf:"audiobook_folder_marker"`
		VerifyAudioDuration   bool          `koanf:"verify_audio_duration"`
		MinAudiobookDuration  time.Duration `koanf:"min_audiobook_duration"`
		HashFiles             bool          `koanf:"hash_files"`
		ExtractAudioMetadata  bool          `koanf:"extract_audio_metadata"`
		VerifyContentType     bool          `koanf:"verify_content_type"`
	} `koanf:"scan"`

	Naming struct {
		FolderTemplate         string `koanf:"folder_template"`
		FileTemplate           string `koanf:"file_template"`
		MultiPartFileTemplate  string `koanf:"multi_part_file_template"`
		FolderTemplateNoSeries string `koanf:"folder_template_no_series"`
		FileTemplateNoSeries   string `koanf:"file_template_no_series"`
	} `koanf:"naming"`
}

func organizerConfigFilePath() string {
	configDir := os.Getenv("CONFIG_DIRECTORY")
	if configDir == "" {
		configDir = "/config"
	}

	return filepath.Join(configDir, "organizer.yaml")
}

// LoadOrganizerConfig loads the organizer config file if it exists and applies
// environment overrides on top of the defaults.
func LoadOrganizerConfig() (*OrganizerConfig, error) {
	k := koanf.New(".")

	path := organizerConfigFilePath()
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.WithStack(err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WithStack(err)
	}

	err := k.Load(env.Provider("SHELFORG_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SHELFORG_")
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaultOrganizerConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	return cfg, nil
}

func defaultOrganizerConfig() *OrganizerConfig {
	cfg := &OrganizerConfig{}

	cfg.Scan.AudioExtensions = []string{".mp3", ".m4b", ".m4a", ".flac"}
	cfg.Scan.EbookExtensions = []string{".epub", ".mobi", ".pdf", ".azw3"}
	cfg.Scan.ComicExtensions = []string{".cbz", ".cbr", ".cb7"}
	cfg.Scan.AudiobookFolderMarker = "audiobook"
	cfg.Scan.MinAudiobookDuration = 30 * time.Minute
	cfg.Scan.HashFiles = true
	cfg.Scan.ExtractAudioMetadata = true
	cfg.Scan.VerifyContentType = true

	cfg.Naming.FolderTemplate = "{author_sort}/{series}/{series_index} - {title} ({year})"
	cfg.Naming.FileTemplate = "{series_index} - {title}.{ext}"
	cfg.Naming.MultiPartFileTemplate = "{title} - Part {part_num}.{ext}"
	cfg.Naming.FolderTemplateNoSeries = "{author_sort}/{title} ({year})"
	cfg.Naming.FileTemplateNoSeries = "{title}.{ext}"

	return cfg
}
