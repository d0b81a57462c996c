package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/storage"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

// MemoryObjects is an in-memory storage.ObjectStore. Missing keys fail the
// way S3 does so storage.IsNotFound recognises them.
type MemoryObjects struct {
	mu      sync.Mutex
	Objects map[string][]byte
	types   map[string]string
	PutErr  error
}

var _ storage.ObjectStore = (*MemoryObjects)(nil)

func NewMemoryObjects() *MemoryObjects {
	return &MemoryObjects{Objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *MemoryObjects) PutObject(_ context.Context, key string, body io.Reader, _ int64, contentType string) (storage.ObjectStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return storage.ObjectStat{}, m.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.ObjectStat{}, err
	}
	m.Objects[key] = data
	m.types[key] = contentType
	return m.stat(key), nil
}

func (m *MemoryObjects) GetObject(_ context.Context, key string) (io.ReadCloser, storage.ObjectStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, storage.ObjectStat{}, noSuchKey()
	}
	return io.NopCloser(bytes.NewReader(data)), m.stat(key), nil
}

func (m *MemoryObjects) StatObject(_ context.Context, key string) (storage.ObjectStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return storage.ObjectStat{}, noSuchKey()
	}
	return m.stat(key), nil
}

func (m *MemoryObjects) stat(key string) storage.ObjectStat {
	return storage.ObjectStat{
		ETag:         "etag-" + key,
		Size:         int64(len(m.Objects[key])),
		ContentType:  m.types[key],
		LastModified: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func noSuchKey() error {
	return minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
}

// PNGBytes returns a small valid PNG.
func PNGBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
