// Package storage provides the backup disk abstraction for Orderdesk.
//
// Resource files under the data directory are mirrored to a Disk after
// every successful write, so a wiped working directory can be restored
// from the configured backup target.
//
// Two drivers are available:
//   - "local"  — a directory on the local filesystem (default)
//   - "s3"     — S3-compatible object storage (AWS S3, MinIO, R2)
//
// Quick start:
//
//	// boot once (e.g. in internal/server/server.go):
//	storage.Connect()
//
//	// default disk (BACKUP_DISK env var, default "local")
//	storage.Put("orders.json", data)
//	data, _ := storage.Get("orders.json")
package storage

import (
	"io"
	"time"
)

// Disk is the backup driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// LastModified returns the file's last-modified time.
	LastModified(path string) (time.Time, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// Files lists filenames directly inside directory.
	Files(directory string) ([]string, error)
}
