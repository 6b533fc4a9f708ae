package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object in one request.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// CompletedPart describes one uploaded part for completing a multipart upload.
// ETag must be supplied verbatim as returned by the store.
type CompletedPart struct {
	PartNumber int32  `json:"partNumber"`
	ETag       string `json:"eTag"`
}

// ObjectStorage abstracts cloud object storage operations, including the
// multipart upload session protocol used by the chunked upload pipeline.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)

	// CreateMultipartUpload opens a multipart session and returns its uploadId.
	CreateMultipartUpload(ctx context.Context, bucket, key, contentType string) (string, error)
	// PresignUploadPart returns a time-limited URL authorizing one PUT of one part.
	PresignUploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int32, expirySeconds int64) (string, error)
	// CompleteMultipartUpload assembles the object from the exact ordered parts list.
	CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []CompletedPart) error
	// AbortMultipartUpload discards any uploaded-but-unassembled parts.
	AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error
}
