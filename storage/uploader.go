// Package storage keeps transfer batch reports in an S3-compatible bucket.
package storage

import (
	"context"
	"io"
)

const ContentTypeJSON = "application/json"

// UploadResult describes a stored object. Location is empty when the bucket
// has no public base URL.
type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	ETag     string `json:"etag,omitempty"`
}

// FileUploader writes objects under a key chosen by the caller.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	GetPublicURL(key string) string
}
