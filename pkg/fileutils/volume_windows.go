//go:build windows

package fileutils

import (
	"path/filepath"
	"strings"
)

// SameVolume reports whether two paths share a drive. On Windows the volume
// name (drive letter or UNC share) is enough; device ids aren't exposed
// through os.Stat.
func SameVolume(a, b string) bool {
	volA := filepath.VolumeName(filepath.Clean(a))
	volB := filepath.VolumeName(filepath.Clean(b))
	return strings.EqualFold(volA, volB)
}
