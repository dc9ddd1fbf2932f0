// Package storage stores uploaded files on the local filesystem or an
// S3-compatible bucket (AWS S3, MinIO, R2, Spaces).
//
//	disk, err := storage.Open(ctx)
//	err = disk.Put(ctx, "sweets/ladoo.png", data, "image/png")
//	url := disk.URL("sweets/ladoo.png")
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Disk is a storage driver.
type Disk interface {
	// Put writes content to name, replacing any existing file.
	Put(ctx context.Context, name string, content []byte, contentType string) error
	Exists(ctx context.Context, name string) bool
	// Delete removes name. Deleting a missing file is not an error.
	Delete(ctx context.Context, name string) error
	// URL returns the public URL for name.
	URL(name string) string
}

// ErrInvalidPath is returned for names that escape the disk root.
var ErrInvalidPath = errors.New("storage: invalid path")

// cleanName normalises a slash-separated object name.
func cleanName(name string) (string, error) {
	n := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	n = strings.TrimPrefix(n, "/")
	if n == "" || n == "." || strings.Contains(name, "..") {
		return "", ErrInvalidPath
	}
	return n, nil
}
