// Package storage contains the blob-store abstraction for document bytes and
// the key layout that maps a document back to its originating request.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"
)

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage is a blob store for document artifacts. Save copies the reader's
// content; the caller keeps ownership of its source (e.g. a temp upload file).
type Storage interface {
	// Save writes an object under the given key, creating parent directories
	// as needed. Saving to an existing key is an error; keys are never
	// silently overwritten.
	Save(ctx context.Context, key string, r io.Reader) (ObjectInfo, error)
	// Open returns the object's content as a streaming reader alongside its info.
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Remove deletes an object by key. A missing object is not an error.
	Remove(ctx context.Context, key string) error
	// Exists reports whether an object is present under the key.
	Exists(ctx context.Context, key string) (bool, error)
	// AbsPath resolves a key to an absolute filesystem path, for backends that
	// have one. Used to hand files to the HTTP layer for streaming.
	AbsPath(key string) string
}

// BuildKey computes the storage-relative key for an uploaded file:
//
//	req_<requestID>/<ownerID>_<YYYYMMDD_HHMMSS>_<originalName>
//
// Partitioning by request id groups a request's documents together, and the
// owner/timestamp prefix keeps concurrent uploads from colliding while staying
// traceable without a database lookup.
func BuildKey(requestID, ownerID int64, ts time.Time, originalName string) string {
	name := filepath.Base(originalName)
	return path.Join(
		fmt.Sprintf("req_%d", requestID),
		fmt.Sprintf("%d_%s_%s", ownerID, ts.Format("20060102_150405"), name),
	)
}
