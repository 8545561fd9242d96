package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				data TEXT NOT NULL,
				progress INTEGER NOT NULL,
				process_id TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE scans (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				root_path TEXT NOT NULL,
				status TEXT NOT NULL,
				current_folder TEXT,
				files_discovered INTEGER NOT NULL DEFAULT 0,
				groups_discovered INTEGER NOT NULL DEFAULT 0,
				errors TEXT,
				started_at TIMESTAMPTZ,
				completed_at TIMESTAMPTZ
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE audiobook_groups (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				scan_id TEXT REFERENCES scans (id) NOT NULL,
				folder_path TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				primary_file_id TEXT,
				file_count INTEGER NOT NULL DEFAULT 0,
				total_duration_seconds REAL,
				title TEXT,
				author TEXT,
				narrator TEXT,
				series TEXT,
				series_index REAL,
				year INTEGER,
				confidence REAL NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_audiobook_groups_scan_id ON audiobook_groups (scan_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_audiobook_groups_folder_path_scan_id ON audiobook_groups (folder_path, scan_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE media_files (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				scan_id TEXT REFERENCES scans (id) NOT NULL,
				group_id TEXT REFERENCES audiobook_groups (id),
				filepath TEXT NOT NULL,
				filename TEXT NOT NULL,
				extension TEXT NOT NULL,
				media_type TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				filesize_bytes INTEGER NOT NULL DEFAULT 0,
				duration_seconds REAL,
				hash TEXT,
				track_number INTEGER,
				title TEXT,
				author TEXT,
				narrator TEXT,
				series TEXT,
				series_index REAL,
				year INTEGER,
				quality TEXT,
				parse_confidence REAL NOT NULL DEFAULT 0,
				final_title TEXT,
				final_author TEXT,
				final_narrator TEXT,
				final_series TEXT,
				final_series_index REAL,
				final_year INTEGER
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_media_files_scan_id ON media_files (scan_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_media_files_group_id ON media_files (group_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_media_files_filepath_scan_id ON media_files (filepath, scan_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE plans (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				scan_id TEXT REFERENCES scans (id) NOT NULL,
				output_root TEXT NOT NULL,
				status TEXT NOT NULL,
				operation_count INTEGER NOT NULL DEFAULT 0,
				completed_count INTEGER NOT NULL DEFAULT 0,
				warnings TEXT,
				collisions TEXT,
				duplicates TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_plans_scan_id ON plans (scan_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE planned_operations (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				plan_id TEXT REFERENCES plans (id) NOT NULL,
				media_file_id TEXT REFERENCES media_files (id),
				group_id TEXT REFERENCES audiobook_groups (id),
				type TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				source_path TEXT NOT NULL,
				target_path TEXT NOT NULL,
				source_hash TEXT,
				error_message TEXT,
				execution_order INTEGER NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_planned_operations_plan_id ON planned_operations (plan_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_planned_operations_plan_id_target_path ON planned_operations (plan_id, target_path)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE audit_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				plan_id TEXT NOT NULL,
				operation_id TEXT,
				action TEXT NOT NULL,
				source_path TEXT NOT NULL,
				target_path TEXT NOT NULL,
				result TEXT NOT NULL,
				error_message TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_audit_logs_plan_id ON audit_logs (plan_id)`)
		return errors.WithStack(err)
	}
	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS audit_logs")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS settings")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS planned_operations")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS plans")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS media_files")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS audiobook_groups")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS scans")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS jobs")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
