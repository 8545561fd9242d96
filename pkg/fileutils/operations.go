package fileutils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// HashFile computes the SHA-256 hash of a file's contents, streaming so
// large audiobooks don't get pulled into memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.WithStack(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SafeRename moves a file with os.Rename after creating the target's parent
// directories. It refuses to overwrite: if anything already exists at the
// target the move fails.
func SafeRename(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.WithStack(err)
	}
	if _, err := os.Stat(target); err == nil {
		return errors.Errorf("target already exists: %s", target)
	}
	if err := os.Rename(source, target); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// SafeCopyDelete copies a file to another volume, verifies the copy by
// hash, and only then deletes the source. A failed or mismatched copy is
// removed so a bad transfer never leaves a partial target behind.
func SafeCopyDelete(source, target, sourceHash string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.WithStack(err)
	}
	if _, err := os.Stat(target); err == nil {
		return errors.Errorf("target already exists: %s", target)
	}

	if err := copyFile(source, target); err != nil {
		os.Remove(target)
		return errors.WithStack(err)
	}

	targetHash, err := HashFile(target)
	if err != nil {
		os.Remove(target)
		return errors.WithStack(err)
	}
	if targetHash != sourceHash {
		os.Remove(target)
		return errors.Errorf("copy verification failed for %s", target)
	}

	if err := os.Remove(source); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// copyFile copies contents and permissions. Timestamps aren't preserved;
// the catalog tracks provenance in the audit log instead.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return errors.WithStack(err)
	}

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return errors.WithStack(err)
	}
	if err := destFile.Chmod(sourceInfo.Mode()); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
