package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"templora/internal/config"
	"templora/internal/domain"
	"templora/internal/port"
)

// MultipartInitInput is the DTO for opening a chunked upload session.
type MultipartInitInput struct {
	Kind             domain.UploadKind
	CategoryID       uuid.UUID
	SubcategoryID    *uuid.UUID
	SubSubcategoryID *uuid.UUID
	Slug             string
	TemplateName     string
	Filename         string
	ContentType      string
	FileSize         int64
}

// PresignedPart pairs a part number with the URL authorizing its upload.
type PresignedPart struct {
	PartNumber   int32  `json:"partNumber"`
	PresignedURL string `json:"presignedUrl"`
}

// MultipartInitOutput is returned to the client driving the chunked upload.
type MultipartInitOutput struct {
	UploadID      string          `json:"uploadId"`
	Key           string          `json:"key"`
	Bucket        string          `json:"bucket"`
	TotalChunks   int             `json:"totalChunks"`
	PresignedURLs []PresignedPart `json:"presignedUrls"`
	PublicURL     string          `json:"publicUrl,omitempty"`
	ChunkSize     int64           `json:"chunkSize"`
}

// MultipartCompleteInput is the DTO for finalizing a chunked upload session.
type MultipartCompleteInput struct {
	UploadID string
	Key      string
	Bucket   string
	Kind     domain.UploadKind
	Parts    []port.CompletedPart
}

// MultipartCompleteOutput carries the durable reference to the assembled object:
// a public URL for previews-bucket objects, the raw key otherwise.
type MultipartCompleteOutput struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// SimpleUploadInput is the DTO for the single-request upload path used below
// the chunked-upload threshold.
type SimpleUploadInput struct {
	Kind             domain.UploadKind
	CategoryID       uuid.UUID
	SubcategoryID    *uuid.UUID
	SubSubcategoryID *uuid.UUID
	Slug             string
	TemplateName     string
	Filename         string
	ContentType      string
	FileSize         int64
	Body             io.Reader
}

// UploadService coordinates multipart upload sessions between clients and the
// object store. It never touches file bytes on the chunked path; parts go
// directly from the client to the store via presigned URLs.
type UploadService interface {
	InitMultipart(ctx context.Context, input MultipartInitInput) (*MultipartInitOutput, error)
	CompleteMultipart(ctx context.Context, input MultipartCompleteInput) (*MultipartCompleteOutput, error)
	AbortMultipart(ctx context.Context, uploadID, key, bucket string)
	SimpleUpload(ctx context.Context, input SimpleUploadInput) (*MultipartCompleteOutput, error)
}

type uploadService struct {
	categoryRepo port.CategoryRepository
	storage      port.ObjectStorage
	s3Cfg        *config.S3Config
	upCfg        config.UploadConfig
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(
	categoryRepo port.CategoryRepository,
	storage port.ObjectStorage,
	s3Cfg *config.S3Config,
	upCfg config.UploadConfig,
) UploadService {
	return &uploadService{
		categoryRepo: categoryRepo,
		storage:      storage,
		s3Cfg:        s3Cfg,
		upCfg:        upCfg,
	}
}

// TotalChunks returns ceil(fileSize / chunkSize).
func TotalChunks(fileSize, chunkSize int64) int {
	return int((fileSize + chunkSize - 1) / chunkSize)
}

func (s *uploadService) InitMultipart(ctx context.Context, input MultipartInitInput) (*MultipartInitOutput, error) {
	if err := s.validate(input.Kind, input.CategoryID, input.FileSize); err != nil {
		return nil, err
	}

	bucket, key, err := s.deriveKey(ctx, input.Kind, input.CategoryID, input.SubcategoryID,
		input.SubSubcategoryID, input.Slug, input.TemplateName, input.Filename)
	if err != nil {
		return nil, err
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadID, err := s.storage.CreateMultipartUpload(ctx, bucket, key, contentType)
	if err != nil {
		log.Printf("uploadService.InitMultipart: create session for %s/%s: %v", bucket, key, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadInitFailed, err)
	}

	totalChunks := TotalChunks(input.FileSize, s.upCfg.ChunkSize)
	urls := make([]PresignedPart, 0, totalChunks)
	for partNumber := int32(1); partNumber <= int32(totalChunks); partNumber++ {
		u, err := s.storage.PresignUploadPart(ctx, bucket, key, uploadID, partNumber, s.s3Cfg.PresignExpiry)
		if err != nil {
			// The session is unusable without a full URL set; release it.
			s.AbortMultipart(ctx, uploadID, key, bucket)
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadInitFailed, err)
		}
		urls = append(urls, PresignedPart{PartNumber: partNumber, PresignedURL: u})
	}

	out := &MultipartInitOutput{
		UploadID:      uploadID,
		Key:           key,
		Bucket:        bucket,
		TotalChunks:   totalChunks,
		PresignedURLs: urls,
		ChunkSize:     s.upCfg.ChunkSize,
	}
	if bucket == s.s3Cfg.PreviewsBucket {
		out.PublicURL = s.publicURL(key)
	}

	log.Printf("uploadService.InitMultipart: opened session %s for %s/%s (%d parts, %d bytes)",
		uploadID, bucket, key, totalChunks, input.FileSize)
	return out, nil
}

func (s *uploadService) CompleteMultipart(ctx context.Context, input MultipartCompleteInput) (*MultipartCompleteOutput, error) {
	if err := s.checkBucket(input.Bucket); err != nil {
		return nil, err
	}

	if err := s.storage.CompleteMultipartUpload(ctx, input.Bucket, input.Key, input.UploadID, input.Parts); err != nil {
		log.Printf("uploadService.CompleteMultipart: session %s for %s/%s: %v",
			input.UploadID, input.Bucket, input.Key, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCompleteFailed, err)
	}

	out := &MultipartCompleteOutput{Key: input.Key, URL: input.Key}
	if input.Bucket == s.s3Cfg.PreviewsBucket {
		out.URL = s.publicURL(input.Key)
	}
	return out, nil
}

// AbortMultipart releases an upload session best-effort. Failures are logged
// only; leaked sessions are reclaimed by the bucket lifecycle policy.
func (s *uploadService) AbortMultipart(ctx context.Context, uploadID, key, bucket string) {
	if err := s.checkBucket(bucket); err != nil {
		log.Printf("uploadService.AbortMultipart: session %s: unknown bucket %q", uploadID, bucket)
		return
	}
	if err := s.storage.AbortMultipartUpload(ctx, bucket, key, uploadID); err != nil {
		log.Printf("uploadService.AbortMultipart: session %s for %s/%s: %v", uploadID, bucket, key, err)
	}
}

func (s *uploadService) SimpleUpload(ctx context.Context, input SimpleUploadInput) (*MultipartCompleteOutput, error) {
	if err := s.validate(input.Kind, input.CategoryID, input.FileSize); err != nil {
		return nil, err
	}

	bucket, key, err := s.deriveKey(ctx, input.Kind, input.CategoryID, input.SubcategoryID,
		input.SubSubcategoryID, input.Slug, input.TemplateName, input.Filename)
	if err != nil {
		return nil, err
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      bucket,
		Key:         key,
		Body:        input.Body,
		ContentType: contentType,
		Size:        input.FileSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	out := &MultipartCompleteOutput{Key: key, URL: key}
	if bucket == s.s3Cfg.PreviewsBucket {
		out.URL = s.publicURL(key)
	}
	return out, nil
}

func (s *uploadService) validate(kind domain.UploadKind, categoryID uuid.UUID, fileSize int64) error {
	if !kind.IsValid() {
		return domain.ErrInvalidUploadKind
	}
	if categoryID == uuid.Nil {
		return domain.ErrMissingCategory
	}
	if fileSize > s.upCfg.MaxFileSize {
		return domain.ErrFileTooLarge
	}
	return nil
}

func (s *uploadService) checkBucket(bucket string) error {
	if bucket != s.s3Cfg.PreviewsBucket && bucket != s.s3Cfg.SourceBucket {
		return domain.ErrForbidden
	}
	return nil
}

// deriveKey computes the canonical storage path for an upload. Preview kinds
// land in the public previews bucket under
// preview/<assetType>/<category>/<subcategory>/<templateFolder>/<filename>;
// the source kind lands in the private bucket without the preview prefix.
func (s *uploadService) deriveKey(
	ctx context.Context,
	kind domain.UploadKind,
	categoryID uuid.UUID,
	subcategoryID, subSubcategoryID *uuid.UUID,
	slug, templateName, filename string,
) (bucket, key string, err error) {
	segments := make([]string, 0, 6)

	if kind.IsPreview() {
		bucket = s.s3Cfg.PreviewsBucket
		segments = append(segments, "preview", domain.PreviewPathSegments[kind])
	} else {
		bucket = s.s3Cfg.SourceBucket
	}

	for _, id := range []*uuid.UUID{&categoryID, subcategoryID, subSubcategoryID} {
		if id == nil || *id == uuid.Nil {
			continue
		}
		cat, err := s.categoryRepo.GetByID(ctx, *id)
		if err != nil {
			return "", "", fmt.Errorf("resolving category %s: %w", *id, err)
		}
		segments = append(segments, cat.Slug)
	}

	templateFolder := slug
	if templateFolder == "" {
		templateFolder = domain.Slugify(templateName)
	}
	segments = append(segments, templateFolder, filepath.Base(filename))

	return bucket, strings.Join(segments, "/"), nil
}

func (s *uploadService) publicURL(key string) string {
	return s.s3Cfg.PublicBaseURL + "/" + key
}
