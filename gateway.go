package bucketgate

import (
	"context"
	"fmt"
	"io"
	"time"
)

// DefaultPresignExpiry is the lifetime of download URLs when none is configured.
const DefaultPresignExpiry = 300 * time.Second

// ObjectStore is the object-storage contract the gateway depends on.
// All keys are full backend keys, already namespaced by owner.
//
// Implementations should respect context cancellation on every call.
type ObjectStore interface {
	// PutObject stores body at key, overwriting any existing object.
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// PutObjectTagging replaces the tag set of the object at key.
	PutObjectTagging(ctx context.Context, key string, tags []Tag) error

	// ListObjects returns up to limit objects whose key starts with prefix,
	// in ascending key order.
	ListObjects(ctx context.Context, prefix string, limit int) ([]ObjectEntry, error)

	// GetObjectTagging returns the tag set of the object at key.
	GetObjectTagging(ctx context.Context, key string) ([]Tag, error)

	// PresignGet returns a time-limited GET URL for key.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)

	// DeleteObject removes the object at key.
	DeleteObject(ctx context.Context, key string) error
}

// GatewayConfig holds configuration options for Gateway.
type GatewayConfig struct {
	PresignExpiry time.Duration // Lifetime of download URLs (default: 300s)
}

// Gateway maps per-user requests onto a single bucket. Every key it touches is
// prefixed with the owner's username.
type Gateway struct {
	store         ObjectStore
	presignExpiry time.Duration
}

func NewGateway(store ObjectStore, cfg GatewayConfig) *Gateway {
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &Gateway{
		store:         store,
		presignExpiry: expiry,
	}
}

// PresignExpiry returns the lifetime of URLs produced by PresignDownload.
func (g *Gateway) PresignExpiry() time.Duration {
	return g.presignExpiry
}

// Upload stores body under owner's namespace at ResolvePath(req.Filename, req.Path).
//
// When req.Tag is set and valid, exactly one tagging call follows a successful
// write. A tagging failure does not fail the upload; it is reported through
// UploadResult.TagErr.
//
// Error types returned:
//   - ErrInvalidInput: owner fails IsValidUsername, filename is empty, or the
//     resolved key fails IsValidPath
//   - ErrStorageWrite: the backend rejected the write
func (g *Gateway) Upload(ctx context.Context, owner string, req UploadRequest, body io.Reader) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	if !IsValidUsername(owner) {
		return UploadResult{}, fmt.Errorf("upload: %w: invalid owner %q", ErrInvalidInput, owner)
	}

	if req.Filename == "" {
		return UploadResult{}, fmt.Errorf("upload: %w: filename cannot be empty", ErrInvalidInput)
	}

	rel := ResolvePath(req.Filename, req.Path)
	if !IsValidPath(rel) {
		return UploadResult{}, fmt.Errorf("upload %s: %w", rel, ErrInvalidInput)
	}

	key := ObjectKey(owner, rel)
	if err := g.store.PutObject(ctx, key, body, req.Size, req.ContentType); err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w: %w", key, ErrStorageWrite, err)
	}

	res := UploadResult{Key: rel, Size: req.Size}

	if req.Tag != nil && req.Tag.Valid() {
		if err := g.store.PutObjectTagging(ctx, key, []Tag{*req.Tag}); err != nil {
			res.TagErr = fmt.Errorf("tag %s: %w", key, err)
		} else {
			res.Tagged = true
		}
	}

	return res, nil
}

// PresignDownload returns a time-limited URL and the tag set for the object
// at rel in owner's namespace.
//
// Error types returned:
//   - ErrInvalidInput: owner fails IsValidUsername or rel fails IsValidPath
//   - ErrNotFound: no object exists at exactly that key
//   - ErrPresign: the backend could not produce a URL
//   - ErrInternal: listing or reading tags failed
func (g *Gateway) PresignDownload(ctx context.Context, owner, rel string) (DownloadResult, error) {
	if err := ctx.Err(); err != nil {
		return DownloadResult{}, fmt.Errorf("presign download: %w", err)
	}

	key, err := g.lookup(ctx, owner, rel)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("presign download: %w", err)
	}

	url, err := g.store.PresignGet(ctx, key, g.presignExpiry)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("presign download %s: %w: %w", key, ErrPresign, err)
	}
	if url == "" {
		return DownloadResult{}, fmt.Errorf("presign download %s: %w: empty url", key, ErrPresign)
	}

	tags, err := g.store.GetObjectTagging(ctx, key)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("presign download %s: get tags: %w: %w", key, ErrInternal, err)
	}
	if tags == nil {
		tags = []Tag{}
	}

	return DownloadResult{
		Key:       rel,
		URL:       url,
		Tags:      tags,
		ExpiresIn: g.presignExpiry,
	}, nil
}

// Delete removes the object at rel in owner's namespace and returns rel.
//
// Error types returned:
//   - ErrInvalidInput: owner fails IsValidUsername or rel fails IsValidPath
//   - ErrNotFound: no object exists at exactly that key; nothing is deleted
//   - ErrStorageDelete: the backend rejected the delete
func (g *Gateway) Delete(ctx context.Context, owner, rel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("delete: %w", err)
	}

	key, err := g.lookup(ctx, owner, rel)
	if err != nil {
		return "", fmt.Errorf("delete: %w", err)
	}

	if err := g.store.DeleteObject(ctx, key); err != nil {
		return "", fmt.Errorf("delete %s: %w: %w", key, ErrStorageDelete, err)
	}

	return rel, nil
}

// lookup resolves rel to a full key and confirms an object exists at exactly
// that key. Listing is ascending, so an exact match is always the first entry.
func (g *Gateway) lookup(ctx context.Context, owner, rel string) (string, error) {
	if !IsValidUsername(owner) {
		return "", fmt.Errorf("%w: invalid owner %q", ErrInvalidInput, owner)
	}

	if !IsValidPath(rel) {
		return "", fmt.Errorf("%s: %w", rel, ErrInvalidInput)
	}

	key := ObjectKey(owner, rel)

	entries, err := g.store.ListObjects(ctx, key, 1)
	if err != nil {
		return "", fmt.Errorf("list %s: %w: %w", key, ErrInternal, err)
	}

	if len(entries) == 0 || entries[0].Key != key {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	return key, nil
}
