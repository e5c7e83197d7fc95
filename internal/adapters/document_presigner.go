// Package adapters wires platform services onto the narrow interfaces the
// domain modules consume.
package adapters

import (
	"context"
	"time"

	"admissions_portal_backend/internal/adapters/storage"
)

// DocumentPresigner exposes upload presigning for application documents.
// Implements the applications handler's UploadPresigner.
type DocumentPresigner struct {
	store  *storage.Service
	bucket string
}

// NewDocumentPresigner creates a presigner bound to the application
// documents bucket.
func NewDocumentPresigner(store *storage.Service, bucket string) *DocumentPresigner {
	return &DocumentPresigner{store: store, bucket: bucket}
}

// PresignUpload returns a presigned PUT URL for the given file key.
func (p *DocumentPresigner) PresignUpload(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	return p.store.PresignUpload(ctx, p.bucket, fileKey, expiry)
}
