package uploader_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templora/internal/config"
	"templora/internal/domain"
	"templora/internal/uploader"
)

const (
	testChunkSize       = 5 * 1024
	testSimpleThreshold = 4 * 1024
	testMaxFileSize     = 64 * 1024
)

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		ChunkSize:       testChunkSize,
		SimpleThreshold: testSimpleThreshold,
		MaxFileSize:     testMaxFileSize,
		PartConcurrency: 3,
	}
}

// fakeStore stands in for the object store's presigned-PUT endpoints. Part
// bodies are recorded per part number; ETags are derived from the part number.
type fakeStore struct {
	mu       sync.Mutex
	bodies   map[int][]byte
	failPart int  // return 500 for this part number (0 = never)
	omitETag bool // answer 200 without an ETag header
	onPart   func(partNumber int)
	server   *httptest.Server
}

func newFakeStore() *fakeStore {
	fs := &fakeStore{bodies: make(map[int][]byte)}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partNumber, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/part/"))
		body, _ := io.ReadAll(r.Body)

		if fs.onPart != nil {
			fs.onPart(partNumber)
		}

		fs.mu.Lock()
		fail := fs.failPart == partNumber
		if !fail {
			fs.bodies[partNumber] = body
		}
		fs.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !fs.omitETag {
			w.Header().Set("ETag", fmt.Sprintf(`"etag-%d"`, partNumber))
		}
		w.WriteHeader(http.StatusOK)
	}))
	return fs
}

func (fs *fakeStore) partURL(partNumber int) string {
	return fmt.Sprintf("%s/part/%d", fs.server.URL, partNumber)
}

func (fs *fakeStore) body(partNumber int) []byte {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.bodies[partNumber]
}

// fakeCoordinator stands in for the upload endpoints, issuing presigned URLs
// that point at the fake store and recording complete/abort payloads.
type fakeCoordinator struct {
	mu           sync.Mutex
	store        *fakeStore
	uploadID     string
	key          string
	bucket       string
	initCalls    int
	simpleCalls  int
	mutateInit   func(data map[string]any)
	completeBody map[string]any
	abortBody    map[string]any
	server       *httptest.Server
}

func newFakeCoordinator(t *testing.T, store *fakeStore) *fakeCoordinator {
	fc := &fakeCoordinator{
		store:    store,
		uploadID: "upload-abc123",
		key:      "preview/thumbnail/graphics/my-template/cover.png",
		bucket:   "templora-previews",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/uploads/multipart/init", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		var req struct {
			FileSize int64 `json:"file_size"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		totalChunks := int((req.FileSize + testChunkSize - 1) / testChunkSize)
		urls := make([]map[string]any, 0, totalChunks)
		for i := 1; i <= totalChunks; i++ {
			urls = append(urls, map[string]any{
				"partNumber":   i,
				"presignedUrl": store.partURL(i),
			})
		}

		fc.mu.Lock()
		fc.initCalls++
		fc.mu.Unlock()

		data := map[string]any{
			"uploadId":      fc.uploadID,
			"key":           fc.key,
			"bucket":        fc.bucket,
			"totalChunks":   totalChunks,
			"presignedUrls": urls,
			"publicUrl":     "https://cdn.test/" + fc.key,
			"chunkSize":     testChunkSize,
		}
		if fc.mutateInit != nil {
			fc.mutateInit(data)
		}
		writeEnvelope(w, http.StatusOK, data)
	})
	mux.HandleFunc("POST /api/v1/uploads/multipart/complete", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fc.mu.Lock()
		fc.completeBody = body
		fc.mu.Unlock()
		writeEnvelope(w, http.StatusOK, map[string]any{
			"key": fc.key,
			"url": "https://cdn.test/" + fc.key,
		})
	})
	mux.HandleFunc("DELETE /api/v1/uploads/multipart/abort", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fc.mu.Lock()
		fc.abortBody = body
		fc.mu.Unlock()
		writeEnvelope(w, http.StatusOK, map[string]any{"aborted": true})
	})
	mux.HandleFunc("POST /api/v1/uploads/simple", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		body, _ := io.ReadAll(file)

		fc.mu.Lock()
		fc.simpleCalls++
		fc.mu.Unlock()
		fc.store.mu.Lock()
		fc.store.bodies[0] = body
		fc.store.mu.Unlock()

		writeEnvelope(w, http.StatusCreated, map[string]any{
			"key": fc.key,
			"url": "https://cdn.test/" + fc.key,
		})
	})

	fc.server = httptest.NewServer(mux)
	return fc
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func (fc *fakeCoordinator) completed() map[string]any {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.completeBody
}

func (fc *fakeCoordinator) abortedWith() map[string]any {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.abortBody
}

// testFile builds an in-memory file with a deterministic byte pattern so part
// slices can be checked against the original.
func testFile(size int) uploader.File {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return uploader.File{
		Reader:      bytes.NewReader(data),
		Size:        int64(size),
		Name:        "cover.png",
		ContentType: "image/png",
	}
}

func testRequest(size int) uploader.Request {
	return uploader.Request{
		Kind:         domain.UploadKindThumbnail,
		CategoryID:   uuid.New(),
		TemplateName: "My Template",
		File:         testFile(size),
	}
}

func TestClient_Upload_Chunked_Success(t *testing.T) {
	store := newFakeStore()
	defer store.server.Close()
	fc := newFakeCoordinator(t, store)
	defer fc.server.Close()

	var progress []uploader.Progress
	var progressMu sync.Mutex

	// 12 KiB against a 5 KiB chunk: three parts of 5, 5 and 2 KiB.
	const fileSize = 12 * 1024
	req := testRequest(fileSize)
	req.OnProgress = func(p uploader.Progress) {
		progressMu.Lock()
		progress = append(progress, p)
		progressMu.Unlock()
	}

	client := uploader.New(fc.server.URL, "token", testUploadConfig())
	result, err := client.Upload(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, fc.key, result.Key)
	assert.Equal(t, "https://cdn.test/"+fc.key, result.URL)

	// Each part carried exactly its byte-range slice of the file.
	full := make([]byte, fileSize)
	for i := range full {
		full[i] = byte(i % 251)
	}
	assert.Equal(t, full[0:5*1024], store.body(1))
	assert.Equal(t, full[5*1024:10*1024], store.body(2))
	assert.Equal(t, full[10*1024:], store.body(3))
	assert.Len(t, store.body(3), 2*1024)

	// The complete request lists parts in ascending order with store ETags.
	completed := fc.completed()
	require.NotNil(t, completed)
	assert.Equal(t, fc.uploadID, completed["uploadId"])
	assert.Equal(t, fc.key, completed["key"])
	assert.Equal(t, fc.bucket, completed["bucket"])
	parts := completed["parts"].([]any)
	require.Len(t, parts, 3)
	for i, raw := range parts {
		part := raw.(map[string]any)
		assert.Equal(t, float64(i+1), part["partNumber"])
		assert.Equal(t, fmt.Sprintf("etag-%d", i+1), part["eTag"])
	}

	assert.Nil(t, fc.abortedWith())

	// Progress ends in the completed state with every byte accounted for.
	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, uploader.StatusCompleted, last.Status)
	assert.Equal(t, int64(fileSize), last.BytesUploaded)
	assert.Equal(t, 3, last.PartsCompleted)
}

func TestClient_Upload_PartFailure_AbortsSession(t *testing.T) {
	store := newFakeStore()
	defer store.server.Close()
	store.failPart = 2
	fc := newFakeCoordinator(t, store)
	defer fc.server.Close()

	var progressMu sync.Mutex
	var lastProgress uploader.Progress
	req := testRequest(12 * 1024)
	req.OnProgress = func(p uploader.Progress) {
		progressMu.Lock()
		lastProgress = p
		progressMu.Unlock()
	}

	client := uploader.New(fc.server.URL, "token", testUploadConfig())
	result, err := client.Upload(context.Background(), req)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "part 2")

	// The session was released and never finalized.
	aborted := fc.abortedWith()
	require.NotNil(t, aborted)
	assert.Equal(t, fc.uploadID, aborted["uploadId"])
	assert.Equal(t, fc.key, aborted["key"])
	assert.Equal(t, fc.bucket, aborted["bucket"])
	assert.Nil(t, fc.completed())

	progressMu.Lock()
	assert.Equal(t, uploader.StatusFailed, lastProgress.Status)
	progressMu.Unlock()
}

func TestClient_Upload_MissingETag_FailsPart(t *testing.T) {
	store := newFakeStore()
	defer store.server.Close()
	store.omitETag = true
	fc := newFakeCoordinator(t, store)
	defer fc.server.Close()

	client := uploader.New(fc.server.URL, "token", testUploadConfig())
	result, err := client.Upload(context.Background(), testRequest(12*1024))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMissingETag)
	assert.NotNil(t, fc.abortedWith())
	assert.Nil(t, fc.completed())
}

func TestClient_Upload_MalformedInitResponse(t *testing.T) {
	// Part numbers outside 1..n, duplicates, or a chunk-count mismatch would
	// make the part loop index past its slots; the client must reject the
	// session before any part is uploaded.
	cases := []struct {
		name   string
		mutate func(data map[string]any)
	}{
		{
			"part number out of range",
			func(data map[string]any) {
				data["totalChunks"] = 1
				data["presignedUrls"] = []map[string]any{
					{"partNumber": 2, "presignedUrl": "https://store.test/part/2"},
				}
			},
		},
		{
			"duplicate part numbers",
			func(data map[string]any) {
				data["totalChunks"] = 2
				data["presignedUrls"] = []map[string]any{
					{"partNumber": 1, "presignedUrl": "https://store.test/part/1"},
					{"partNumber": 1, "presignedUrl": "https://store.test/part/1"},
				}
			},
		},
		{
			"url count disagrees with chunk count",
			func(data map[string]any) {
				data["totalChunks"] = 3
				data["presignedUrls"] = []map[string]any{
					{"partNumber": 1, "presignedUrl": "https://store.test/part/1"},
				}
			},
		},
		{
			"no urls at all",
			func(data map[string]any) {
				data["totalChunks"] = 0
				data["presignedUrls"] = []map[string]any{}
			},
		},
		{
			"zero chunk size",
			func(data map[string]any) { data["chunkSize"] = 0 },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			defer store.server.Close()
			fc := newFakeCoordinator(t, store)
			defer fc.server.Close()
			fc.mutateInit = tc.mutate

			client := uploader.New(fc.server.URL, "token", testUploadConfig())
			result, err := client.Upload(context.Background(), testRequest(12*1024))

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrBadInitResponse)
			assert.Nil(t, result)

			store.mu.Lock()
			assert.Empty(t, store.bodies)
			store.mu.Unlock()
		})
	}
}

func TestClient_Upload_NonJSONResponse(t *testing.T) {
	// A proxy in front of the coordinator may answer with a plain-text error
	// page; the client should surface it instead of failing to decode.
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>502 Bad Gateway</html>")
	}))
	defer gateway.Close()

	client := uploader.New(gateway.URL, "token", testUploadConfig())
	result, err := client.Upload(context.Background(), testRequest(12*1024))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "Bad Gateway")
}

func TestClient_Upload_Cancellation_AbortsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newFakeStore()
	defer store.server.Close()
	// Cancel mid-upload: the first part cancels the caller's context while
	// later parts are still pending.
	store.onPart = func(partNumber int) {
		if partNumber == 1 {
			cancel()
		}
	}
	fc := newFakeCoordinator(t, store)
	defer fc.server.Close()

	cfg := testUploadConfig()
	cfg.PartConcurrency = 1

	var progressMu sync.Mutex
	var lastProgress uploader.Progress
	req := testRequest(12 * 1024)
	req.OnProgress = func(p uploader.Progress) {
		progressMu.Lock()
		lastProgress = p
		progressMu.Unlock()
	}

	client := uploader.New(fc.server.URL, "token", cfg)
	result, err := client.Upload(ctx, req)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)

	// Cancellation is surfaced as an aborted session, not a part failure.
	progressMu.Lock()
	assert.Equal(t, uploader.StatusAborted, lastProgress.Status)
	progressMu.Unlock()

	// Abort still reaches the coordinator on a detached context.
	assert.NotNil(t, fc.abortedWith())
	assert.Nil(t, fc.completed())
}

func TestClient_Upload_ThresholdRouting(t *testing.T) {
	store := newFakeStore()
	defer store.server.Close()
	fc := newFakeCoordinator(t, store)
	defer fc.server.Close()

	client := uploader.New(fc.server.URL, "token", testUploadConfig())

	// One byte under the threshold takes the single-request path.
	_, err := client.Upload(context.Background(), testRequest(testSimpleThreshold-1))
	require.NoError(t, err)
	assert.Equal(t, 1, fc.simpleCalls)
	assert.Equal(t, 0, fc.initCalls)

	// Exactly at the threshold switches to the chunked path.
	_, err = client.Upload(context.Background(), testRequest(testSimpleThreshold))
	require.NoError(t, err)
	assert.Equal(t, 1, fc.simpleCalls)
	assert.Equal(t, 1, fc.initCalls)
}

func TestClient_Upload_SimplePathForwardsFile(t *testing.T) {
	store := newFakeStore()
	defer store.server.Close()
	fc := newFakeCoordinator(t, store)
	defer fc.server.Close()

	client := uploader.New(fc.server.URL, "token", testUploadConfig())
	result, err := client.Upload(context.Background(), testRequest(1024))

	require.NoError(t, err)
	assert.Equal(t, fc.key, result.Key)

	sent := store.body(0)
	require.Len(t, sent, 1024)
	for i, b := range sent {
		require.Equal(t, byte(i%251), b, "byte %d", i)
	}
}

func TestClient_Upload_PreconditionsBeforeNetwork(t *testing.T) {
	store := newFakeStore()
	defer store.server.Close()
	fc := newFakeCoordinator(t, store)
	defer fc.server.Close()

	client := uploader.New(fc.server.URL, "token", testUploadConfig())

	// Over the ceiling.
	req := testRequest(16)
	req.File.Size = testMaxFileSize + 1
	_, err := client.Upload(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	// At the ceiling the size check passes (the fake rejects nothing).
	okReq := testRequest(16)
	okReq.File.Size = 16
	_, err = client.Upload(context.Background(), okReq)
	assert.NoError(t, err)

	// Missing category.
	req = testRequest(16)
	req.CategoryID = uuid.Nil
	_, err = client.Upload(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMissingCategory)

	// Unknown kind.
	req = testRequest(16)
	req.Kind = domain.UploadKind("archive")
	_, err = client.Upload(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidUploadKind)

	// Precondition failures never touched the coordinator: only the one
	// valid upload above did.
	assert.Equal(t, 1, fc.simpleCalls)
	assert.Equal(t, 0, fc.initCalls)
}
