// Package storage keeps property image files. URLs are storage-relative
// paths of the form /uploads/properties/<folder>/<file>, where folder is
// either "temp" or a numeric property id. Backends map them to files or
// object keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

const (
	URLPrefix  = "/uploads/properties"
	TempFolder = "temp"
)

// ErrNotExist is returned by Move when neither the source nor the
// destination of a move exists.
var ErrNotExist = errors.New("storage: file does not exist")

// ErrInvalidURL is returned for URLs outside URLPrefix.
var ErrInvalidURL = errors.New("storage: url outside upload area")

// Store is an image file backend.
type Store interface {
	// Save writes r under folder/name and returns its URL.
	Save(ctx context.Context, folder, name, contentType string, r io.Reader) (string, error)
	// Move relocates url into folder and returns the new URL. When the source
	// is gone but the destination exists, the move already happened and the
	// destination URL is returned without error.
	Move(ctx context.Context, url, folder string) (string, error)
	// Delete removes url. A missing file is not an error.
	Delete(ctx context.Context, url string) error
	Exists(ctx context.Context, url string) (bool, error)
	// Ping checks the backend is reachable and writable.
	Ping(ctx context.Context) error
}

// URL builds the public URL for name in folder.
func URL(folder, name string) string {
	return URLPrefix + "/" + folder + "/" + name
}

// PropertyFolder is the permanent folder for a property's images.
func PropertyFolder(propertyID uint) string {
	return strconv.FormatUint(uint64(propertyID), 10)
}

// IsTemp reports whether url points into temp storage.
func IsTemp(url string) bool {
	return strings.HasPrefix(url, URLPrefix+"/"+TempFolder+"/")
}

// Attachable reports whether url may join the gallery of propertyID: a
// fresh temp upload or a file already in that property's folder.
func Attachable(url string, propertyID uint) bool {
	folder, _, err := split(url)
	if err != nil {
		return false
	}
	return folder == TempFolder || folder == PropertyFolder(propertyID)
}

// split validates url and returns its folder and file name.
func split(url string) (folder, name string, err error) {
	if !strings.HasPrefix(url, URLPrefix+"/") {
		return "", "", ErrInvalidURL
	}
	rest := path.Clean(strings.TrimPrefix(url, URLPrefix+"/"))
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == ".." || parts[0] == "." || parts[1] == ".." || parts[1] == "" {
		return "", "", ErrInvalidURL
	}
	return parts[0], parts[1], nil
}

// Open returns the backend named by backend ("local" or "s3").
func Open(ctx context.Context, backend, root string, s3cfg S3Config) (Store, error) {
	switch backend {
	case "", "local":
		return NewLocal(root), nil
	case "s3":
		return NewS3(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", backend)
	}
}
