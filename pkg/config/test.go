package config

import "time"

// NewForTest returns a config suitable for tests without reading the
// environment or any config files on disk.
func NewForTest() *Config {
	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		Hostname:                  "test",
		Organizer:                 defaultOrganizerConfig(),
	}
	loadTestConfig(cfg)
	return cfg
}

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
	cfg.WorkerProcesses = 1
	// Test fixtures are plain-text stand-ins for media files, so content
	// sniffing is opt-in per test.
	cfg.Organizer.Scan.VerifyContentType = false
}
