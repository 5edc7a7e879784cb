// Package storage persists uploaded images (item photos, portal
// backgrounds) on local disk and serves them back by public URL. Clients
// send images as base64 data URIs, the format produced by the in-browser
// resizer, and receive a stable URL to store on the entity.
package storage

import (
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"dreamportal/internal/errors"
	"dreamportal/internal/uuid"
)

// Asset categories, used as subdirectories under each owner.
const (
	CategoryItem       = "items"
	CategoryBackground = "backgrounds"
)

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Store writes assets under dir/<ownerID>/<category>/ and maps them to
// URLs below baseURL. Uploads beyond maxBytes (decoded size) are rejected.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStore creates the asset root if needed.
func NewStore(dir, baseURL string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Dir returns the on-disk asset root, for static file serving.
func (s *Store) Dir() string { return s.dir }

// Upload decodes a data URI and writes it as a new asset, returning the
// public URL. Malformed or non-image payloads fail with ErrInvalidAsset;
// oversized payloads with ErrAssetTooLarge; a full disk with
// ErrStorageFull.
func (s *Store) Upload(ownerID, category, dataURI string) (string, error) {
	if category != CategoryItem && category != CategoryBackground {
		return "", errors.WithMessage(errors.ErrInvalidAsset, "unknown asset category")
	}

	mime, payload, err := splitDataURI(dataURI)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidAsset, err)
	}
	ext, ok := extByMIME[mime]
	if !ok {
		return "", errors.WithMessage(errors.ErrInvalidAsset, "unsupported image type "+mime)
	}

	// Reject before decoding: base64 inflates by 4/3, so the encoded
	// length bounds the decoded size.
	if int64(len(payload))/4*3 > s.maxBytes {
		return "", errors.ErrAssetTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidAsset, err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", errors.ErrAssetTooLarge
	}

	name := uuid.New() + ext
	assetDir := filepath.Join(s.dir, ownerID, category)
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return "", storageErr(err)
	}
	if err := os.WriteFile(filepath.Join(assetDir, name), data, 0o644); err != nil {
		return "", storageErr(err)
	}
	return s.baseURL + "/" + path.Join(ownerID, category, name), nil
}

// Delete removes a single asset previously returned by Upload. URLs
// outside this store are ignored, so stale references never fail a save.
func (s *Store) Delete(ownerID, assetURL string) error {
	rel, ok := strings.CutPrefix(assetURL, s.baseURL+"/")
	if !ok {
		return nil
	}
	rel = filepath.Clean(filepath.FromSlash(rel))
	if !strings.HasPrefix(rel, ownerID+string(filepath.Separator)) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, rel)); err != nil && !os.IsNotExist(err) {
		return storageErr(err)
	}
	return nil
}

// Purge removes every asset an owner ever uploaded.
func (s *Store) Purge(ownerID string) error {
	if ownerID == "" {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(s.dir, ownerID)); err != nil {
		return storageErr(err)
	}
	return nil
}

// splitDataURI parses "data:<mime>;base64,<payload>".
func splitDataURI(uri string) (mime, payload string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("data URI missing payload")
	}
	mime, enc, ok := strings.Cut(meta, ";")
	if !ok || enc != "base64" {
		return "", "", fmt.Errorf("data URI is not base64 encoded")
	}
	return mime, payload, nil
}

func storageErr(err error) error {
	if stderrors.Is(err, syscall.ENOSPC) || stderrors.Is(err, syscall.EDQUOT) {
		return errors.Wrap(errors.ErrStorageFull, err)
	}
	return errors.Wrap(errors.ErrInternalServer, err)
}
