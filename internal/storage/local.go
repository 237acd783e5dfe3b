package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// localSubdir separates filesystem-backed objects from future backends that
// may share the same root.
const localSubdir = "local"

// localStorage implements Storage on a plain directory tree.
// It is safe for concurrent use; distinct keys never share a file.
type localStorage struct {
	root string
}

// NewLocal creates a filesystem-backed Storage rooted at dir. The root is
// created if missing.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	root := filepath.Join(dir, localSubdir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &localStorage{root: root}, nil
}

func (l *localStorage) AbsPath(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

// Save copies r into the tree under key. The write is bounded by validation
// performed before Save is called; no size limit is enforced here. The create
// is exclusive: a key collision errors instead of clobbering the existing
// object's bytes.
func (l *localStorage) Save(ctx context.Context, key string, r io.Reader) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	dst := l.AbsPath(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create object: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return ObjectInfo{}, fmt.Errorf("write object: %w", err)
	}

	st, err := os.Stat(dst)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat object: %w", err)
	}

	return ObjectInfo{Key: key, Size: n, LastModified: st.ModTime()}, nil
}

func (l *localStorage) Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	p := l.AbsPath(key)
	f, err := os.Open(p)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}

	return f, ObjectInfo{Key: key, Size: st.Size(), LastModified: st.ModTime()}, nil
}

// Remove deletes the object's file. A file that is already gone is treated as
// removed.
func (l *localStorage) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(l.AbsPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (l *localStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(l.AbsPath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
