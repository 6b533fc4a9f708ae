// Package uploader is the client-side driver for the chunked upload pipeline.
// It splits a file into parts, uploads each part directly to the object store
// through presigned URLs issued by the coordinator, and finalizes or aborts
// the session. The coordinator never sees file bytes on this path.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"templora/internal/config"
	"templora/internal/domain"
	"templora/internal/port"
)

// File describes the source being uploaded. Reader must support concurrent
// ReadAt calls; parts are sliced as non-overlapping sections.
type File struct {
	Reader      io.ReaderAt
	Size        int64
	Name        string
	ContentType string
}

// Request describes one upload.
type Request struct {
	Kind             domain.UploadKind
	CategoryID       uuid.UUID
	SubcategoryID    *uuid.UUID
	SubSubcategoryID *uuid.UUID
	Slug             string
	TemplateName     string
	File             File
	OnProgress       ProgressFunc
}

// Result is the durable reference to the uploaded object: a public URL for
// previews-bucket assets, the raw storage key for private source archives.
type Result struct {
	Key string
	URL string
}

// Client drives uploads against a coordinator endpoint group.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	cfg        config.UploadConfig
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client. baseURL is the coordinator's root (no trailing slash
// required); authToken is the bearer credential for the coordinator, not the
// object store.
func New(baseURL, authToken string, cfg config.UploadConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{},
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends the file, choosing the single-request path below the chunked
// threshold and the multipart path at or above it. Precondition failures
// (missing category, file over the ceiling) return before any network call.
func (c *Client) Upload(ctx context.Context, req Request) (*Result, error) {
	if !req.Kind.IsValid() {
		return nil, domain.ErrInvalidUploadKind
	}
	if req.CategoryID == uuid.Nil {
		return nil, domain.ErrMissingCategory
	}
	if req.File.Size > c.cfg.MaxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	if req.File.Size < c.cfg.SimpleThreshold {
		return c.uploadSimple(ctx, req)
	}
	return c.uploadChunked(ctx, req)
}

func (c *Client) uploadChunked(ctx context.Context, req Request) (*Result, error) {
	init, err := c.initSession(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := init.validate(); err != nil {
		return nil, err
	}

	sess := newSession(req.File.Size, init.TotalChunks, req.OnProgress)
	parts := make([]port.CompletedPart, len(init.PresignedURLs))

	concurrency := c.cfg.PartConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, pu := range init.PresignedURLs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part, n, err := c.uploadPart(gctx, req.File, pu, init.ChunkSize)
			if err != nil {
				return err
			}
			// Slots are keyed by part number, so concurrent completions
			// cannot reorder the final list.
			parts[pu.PartNumber-1] = part
			sess.partSucceeded(n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			sess.aborted()
		} else {
			sess.partFailed()
		}
		c.abortSession(ctx, init)
		return nil, err
	}

	result, err := c.completeSession(ctx, req.Kind, init, parts)
	if err != nil {
		sess.partFailed()
		c.abortSession(ctx, init)
		return nil, err
	}

	sess.completed()
	return result, nil
}

// uploadPart PUTs one byte-range slice to its presigned URL and returns the
// completed-part record plus the slice length.
func (c *Client) uploadPart(ctx context.Context, file File, pu presignedPart, chunkSize int64) (port.CompletedPart, int64, error) {
	offset := int64(pu.PartNumber-1) * chunkSize
	length := chunkSize
	if remaining := file.Size - offset; remaining < length {
		length = remaining
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, pu.PresignedURL,
		io.NewSectionReader(file.Reader, offset, length))
	if err != nil {
		return port.CompletedPart{}, 0, fmt.Errorf("building part %d request: %w", pu.PartNumber, err)
	}
	httpReq.ContentLength = length
	httpReq.Header.Set("Content-Type", contentTypeOf(file))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return port.CompletedPart{}, 0, fmt.Errorf("uploading part %d: %w", pu.PartNumber, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return port.CompletedPart{}, 0, fmt.Errorf("uploading part %d: store returned %s", pu.PartNumber, resp.Status)
	}

	// A 2xx without an ETag cannot be finalized, so it counts as a failure.
	etag := strings.Trim(resp.Header.Get("ETag"), `"`)
	if etag == "" {
		return port.CompletedPart{}, 0, fmt.Errorf("part %d: %w", pu.PartNumber, domain.ErrMissingETag)
	}

	return port.CompletedPart{PartNumber: pu.PartNumber, ETag: etag}, length, nil
}

func (c *Client) initSession(ctx context.Context, req Request) (*initData, error) {
	payload := initRequest{
		Kind:             string(req.Kind),
		CategoryID:       req.CategoryID,
		SubcategoryID:    req.SubcategoryID,
		SubSubcategoryID: req.SubSubcategoryID,
		Slug:             req.Slug,
		TemplateName:     req.TemplateName,
		Filename:         req.File.Name,
		ContentType:      contentTypeOf(req.File),
		FileSize:         req.File.Size,
	}
	var data initData
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/uploads/multipart/init", payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) completeSession(ctx context.Context, kind domain.UploadKind, init *initData, parts []port.CompletedPart) (*Result, error) {
	payload := completeRequest{
		UploadID: init.UploadID,
		Key:      init.Key,
		Bucket:   init.Bucket,
		Kind:     string(kind),
		Parts:    parts,
	}
	var data completeData
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/uploads/multipart/complete", payload, &data); err != nil {
		return nil, err
	}
	return &Result{Key: data.Key, URL: data.URL}, nil
}

// abortSession releases the session best-effort. It runs on a detached
// context so a canceled upload can still clean up; failures are logged only.
func (c *Client) abortSession(ctx context.Context, init *initData) {
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	payload := abortRequest{UploadID: init.UploadID, Key: init.Key, Bucket: init.Bucket}
	if err := c.doJSON(abortCtx, http.MethodDelete, "/api/v1/uploads/multipart/abort", payload, nil); err != nil {
		log.Printf("uploader: abort session %s: %v", init.UploadID, err)
	}
}

func (c *Client) uploadSimple(ctx context.Context, req Request) (*Result, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := map[string]string{
		"kind":          string(req.Kind),
		"category_id":   req.CategoryID.String(),
		"slug":          req.Slug,
		"template_name": req.TemplateName,
	}
	if req.SubcategoryID != nil {
		fields["subcategory_id"] = req.SubcategoryID.String()
	}
	if req.SubSubcategoryID != nil {
		fields["sub_subcategory_id"] = req.SubSubcategoryID.String()
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("building form: %w", err)
		}
	}

	fw, err := w.CreateFormFile("file", req.File.Name)
	if err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}
	if _, err := io.Copy(fw, io.NewSectionReader(req.File.Reader, 0, req.File.Size)); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/uploads/simple", body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("simple upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var data completeData
	if err := decodeEnvelope(resp, &data); err != nil {
		return nil, err
	}
	return &Result{Key: data.Key, URL: data.URL}, nil
}

// doJSON sends a JSON payload to a coordinator endpoint and unmarshals the
// envelope's data field into out (when out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeEnvelope(resp, out)
}

// decodeEnvelope parses the coordinator's response envelope. Non-JSON bodies
// degrade to a raw-text error instead of a decode panic.
func decodeEnvelope(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("coordinator returned %s: %s", resp.Status, truncate(string(raw), 200))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !envelope.Success {
		if envelope.Error != nil {
			return fmt.Errorf("coordinator error %s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("coordinator returned %s", resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

func contentTypeOf(f File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return "application/octet-stream"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Wire types mirroring the coordinator's request and response JSON.

type initRequest struct {
	Kind             string     `json:"kind"`
	CategoryID       uuid.UUID  `json:"category_id"`
	SubcategoryID    *uuid.UUID `json:"subcategory_id,omitempty"`
	SubSubcategoryID *uuid.UUID `json:"sub_subcategory_id,omitempty"`
	Slug             string     `json:"slug,omitempty"`
	TemplateName     string     `json:"template_name"`
	Filename         string     `json:"filename"`
	ContentType      string     `json:"content_type"`
	FileSize         int64      `json:"file_size"`
}

type presignedPart struct {
	PartNumber   int32  `json:"partNumber"`
	PresignedURL string `json:"presignedUrl"`
}

type initData struct {
	UploadID      string          `json:"uploadId"`
	Key           string          `json:"key"`
	Bucket        string          `json:"bucket"`
	TotalChunks   int             `json:"totalChunks"`
	PresignedURLs []presignedPart `json:"presignedUrls"`
	PublicURL     string          `json:"publicUrl"`
	ChunkSize     int64           `json:"chunkSize"`
}

// validate rejects init responses the part loop cannot safely index: part
// numbers must cover 1..n exactly once, with n matching totalChunks.
func (d *initData) validate() error {
	n := len(d.PresignedURLs)
	if n == 0 || d.TotalChunks != n || d.ChunkSize <= 0 || d.UploadID == "" {
		return fmt.Errorf("%w: %d urls for %d chunks", domain.ErrBadInitResponse, n, d.TotalChunks)
	}
	seen := make(map[int32]bool, n)
	for _, pu := range d.PresignedURLs {
		if pu.PartNumber < 1 || pu.PartNumber > int32(n) || seen[pu.PartNumber] {
			return fmt.Errorf("%w: part number %d", domain.ErrBadInitResponse, pu.PartNumber)
		}
		seen[pu.PartNumber] = true
	}
	return nil
}

type completeRequest struct {
	UploadID string               `json:"uploadId"`
	Key      string               `json:"key"`
	Bucket   string               `json:"bucket"`
	Kind     string               `json:"kind"`
	Parts    []port.CompletedPart `json:"parts"`
}

type completeData struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type abortRequest struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
	Bucket   string `json:"bucket"`
}
