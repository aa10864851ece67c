package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores files under Root, mirroring the URL path
// (Root/uploads/properties/<folder>/<file>), so Root can be served statically.
type Local struct {
	Root string
}

func NewLocal(root string) *Local {
	return &Local{Root: root}
}

func (l *Local) path(folder, name string) string {
	return filepath.Join(l.Root, filepath.FromSlash(URLPrefix), folder, name)
}

func (l *Local) resolve(url string) (string, string, string, error) {
	folder, name, err := split(url)
	if err != nil {
		return "", "", "", err
	}
	return folder, name, l.path(folder, name), nil
}

func (l *Local) Save(ctx context.Context, folder, name, contentType string, r io.Reader) (string, error) {
	url := URL(folder, name)
	_, _, p, err := l.resolve(url)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", fmt.Errorf("close file: %w", err)
	}
	return url, nil
}

func (l *Local) Move(ctx context.Context, url, folder string) (string, error) {
	_, name, src, err := l.resolve(url)
	if err != nil {
		return "", err
	}
	dstURL := URL(folder, name)
	dst := l.path(folder, name)
	if src == dst {
		return url, nil
	}
	if !fileExists(src) {
		if fileExists(dst) {
			return dstURL, nil
		}
		return "", fmt.Errorf("%s: %w", url, ErrNotExist)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("rename: %w", err)
	}
	return dstURL, nil
}

func (l *Local) Delete(ctx context.Context, url string) error {
	_, _, p, err := l.resolve(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, url string) (bool, error) {
	_, _, p, err := l.resolve(url)
	if err != nil {
		return false, err
	}
	return fileExists(p), nil
}

func (l *Local) Ping(ctx context.Context) error {
	dir := filepath.Join(l.Root, filepath.FromSlash(URLPrefix), TempFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".ping-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
