package bucket

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tunearena/gateway/internal/arena"
)

// Local stores objects as files under a root directory. Keys map to
// relative paths; the public URL prefixes them with a configured base.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) *Local {
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &arena.NotFoundError{Resource: "object", ID: key}
	}
	if err != nil {
		return nil, storageErr("get", key, err)
	}
	return data, nil
}

func (l *Local) Put(_ context.Context, key string, data []byte, _ string, allowOverwrite bool) error {
	path := l.path(key)
	if !allowOverwrite {
		if _, err := os.Stat(path); err == nil {
			return storageErr("put", key, fmt.Errorf("object already exists"))
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return storageErr("put", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return storageErr("put", key, err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageErr("delete", key, err)
	}
	return nil
}

func (l *Local) PublicURL(key string) string {
	return l.baseURL + "/" + key
}
