//go:build !windows

package fileutils

import (
	"os"
	"path/filepath"
	"syscall"
)

// SameVolume reports whether two paths live on the same filesystem by
// comparing device ids. Paths that don't exist yet are resolved to their
// nearest existing ancestor, since plan targets usually haven't been
// created at planning time.
func SameVolume(a, b string) bool {
	devA, okA := deviceID(nearestExisting(a))
	devB, okB := deviceID(nearestExisting(b))
	if !okA || !okB {
		// Can't tell; assume the same volume so the cheaper operation
		// gets planned and a cross-device rename falls back at
		// execution time.
		return true
	}
	return devA == devB
}

func nearestExisting(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

func deviceID(path string) (uint64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(stat.Dev), true
}
