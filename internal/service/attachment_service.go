package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/storage"
	"github.com/google/uuid"
)

const (
	attachmentPrefix = "attachments"
	mediaRoute       = "/api/media/"
)

type AttachmentService struct {
	objects  storage.ObjectStore
	baseURL  string
	maxBytes int64
	opts     storage.ImageOptions
}

// UploadResult is what a client needs to reference an upload in a message.
type UploadResult struct {
	Key         string `json:"key"`
	FileURL     string `json:"file_url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func NewAttachmentService(objects storage.ObjectStore, publicBaseURL string, maxBytes int64, opts storage.ImageOptions) *AttachmentService {
	return &AttachmentService{
		objects:  objects,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxBytes: maxBytes,
		opts:     opts,
	}
}

func (s *AttachmentService) Enabled() bool {
	return s != nil && s.objects != nil
}

func (s *AttachmentService) Upload(ctx context.Context, userID string, r io.Reader) (*UploadResult, error) {
	if !s.Enabled() {
		return nil, apperr.Upstream("Attachment storage is not configured", "", nil)
	}

	att, err := storage.PrepareAttachment(r, s.maxBytes, s.opts)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return nil, apperr.Validation("File is too large")
	case errors.Is(err, storage.ErrUnsupported):
		return nil, apperr.Validation("Unsupported file type")
	case errors.Is(err, storage.ErrInvalidImage):
		return nil, apperr.Validation("Invalid image")
	case err != nil:
		return nil, apperr.Validation("Could not read upload")
	}

	key := fmt.Sprintf("%s/%s/%s%s", attachmentPrefix, userID, uuid.NewString(), att.Ext)
	stat, err := s.objects.PutObject(ctx, key, bytes.NewReader(att.Data), int64(len(att.Data)), att.ContentType)
	if err != nil {
		return nil, apperr.Upstream("Failed to store attachment", "", err)
	}

	return &UploadResult{
		Key:         key,
		FileURL:     s.baseURL + mediaRoute + key,
		ContentType: att.ContentType,
		Size:        stat.Size,
	}, nil
}

// Stat resolves a client-supplied media key.
func (s *AttachmentService) Stat(ctx context.Context, key string) (storage.ObjectStat, error) {
	if !s.Enabled() {
		return storage.ObjectStat{}, apperr.NotFound("File not found")
	}
	key, err := storage.SafeKey(attachmentPrefix, key)
	if err != nil {
		return storage.ObjectStat{}, apperr.Validation("Invalid file key")
	}
	stat, err := s.objects.StatObject(ctx, key)
	if err != nil {
		return storage.ObjectStat{}, mapObjectError(err)
	}
	return stat, nil
}

// Open streams the object behind key. The caller closes the reader.
func (s *AttachmentService) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectStat, error) {
	if !s.Enabled() {
		return nil, storage.ObjectStat{}, apperr.NotFound("File not found")
	}
	key, err := storage.SafeKey(attachmentPrefix, key)
	if err != nil {
		return nil, storage.ObjectStat{}, apperr.Validation("Invalid file key")
	}
	body, stat, err := s.objects.GetObject(ctx, key)
	if err != nil {
		return nil, storage.ObjectStat{}, mapObjectError(err)
	}
	return body, stat, nil
}

func mapObjectError(err error) error {
	if storage.IsNotFound(err) {
		return apperr.NotFound("File not found")
	}
	return apperr.Upstream("Failed to read attachment", "", err)
}
