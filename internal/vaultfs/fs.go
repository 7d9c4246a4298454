// Package vaultfs provides the filesystem capabilities the sync engine
// consumes: text file read/write, directory creation, and single-file
// change watching.
package vaultfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the file capability boundary. The engine never touches the
// filesystem except through an FS, so tests can substitute fakes and
// inject failures.
type FS interface {
	// ReadTextFile returns the file's contents. A missing file is reported
	// via an error satisfying IsNotFound.
	ReadTextFile(path string) (string, error)

	// WriteTextFile replaces the file's contents atomically.
	WriteTextFile(path, text string) error

	// EnsureDir creates the directory (and parents) if missing.
	EnsureDir(path string) error
}

// IsNotFound reports whether err means the file does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// OSFS implements FS over the real filesystem.
type OSFS struct{}

// NewOSFS returns an FS backed by the operating system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// ReadTextFile implements FS.ReadTextFile.
func (*OSFS) ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteTextFile implements FS.WriteTextFile.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated vault document behind.
func (*OSFS) WriteTextFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// EnsureDir implements FS.EnsureDir.
func (*OSFS) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
