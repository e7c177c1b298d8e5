// Package file stores evolution attachments in object storage. Keys are
// recorded on the evolution; the bucket itself is private and reached only
// through short-lived presigned URLs.
package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	s3pkg "github.com/equidadeplus/equidade_backend/pkg/s3"
)

const keyPrefix = "evolutions"

var allowedTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Blobs is the object store.
type Blobs interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	MaxUploadBytes() int64
}

// Evolutions is the part of the evolution workflow attachments go through,
// so visibility and draft-only rules live in one place.
type Evolutions interface {
	Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Evolution, error)
	AttachFile(ctx context.Context, actor authorize.Actor, id uuid.UUID, key string) (*repo.Evolution, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UploadResult struct {
	Key       string          `json:"key"`
	FileName  string          `json:"file_name"`
	Size      int64           `json:"size"`
	MimeType  string          `json:"mime_type"`
	Evolution *repo.Evolution `json:"evolution"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Upload(ctx context.Context, actor authorize.Actor, evolutionID uuid.UUID, fh *multipart.FileHeader) (*UploadResult, error)
	PresignDownload(ctx context.Context, actor authorize.Actor, evolutionID uuid.UUID, key string) (string, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type fileService struct {
	blobs      Blobs
	evolutions Evolutions
}

// New accepts a nil blobs when storage is not configured; every call then
// fails with ErrDisabled.
func New(blobs Blobs, evolutions Evolutions) Service {
	return &fileService{blobs: blobs, evolutions: evolutions}
}

func (s *fileService) Upload(ctx context.Context, actor authorize.Actor, evolutionID uuid.UUID, fh *multipart.FileHeader) (*UploadResult, error) {
	if s.blobs == nil {
		return nil, ErrDisabled
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mime, ok := allowedTypes[ext]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if fh.Size <= 0 || fh.Size > s.blobs.MaxUploadBytes() {
		return nil, ErrTooLarge
	}
	// Fail before touching the bucket when the evolution is out of reach.
	if _, err := s.evolutions.Get(ctx, actor, evolutionID); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := s3pkg.ObjectKey(keyPrefix, evolutionID, fh.Filename)
	if err := s.blobs.Upload(ctx, key, mime, src, fh.Size); err != nil {
		return nil, err
	}

	e, err := s.evolutions.AttachFile(ctx, actor, evolutionID, key)
	if err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			slog.WarnContext(ctx, "file: remove orphaned upload", "key", key, "error", derr)
		}
		return nil, err
	}

	return &UploadResult{
		Key:       key,
		FileName:  fh.Filename,
		Size:      fh.Size,
		MimeType:  mime,
		Evolution: e,
	}, nil
}

func (s *fileService) PresignDownload(ctx context.Context, actor authorize.Actor, evolutionID uuid.UUID, key string) (string, error) {
	if s.blobs == nil {
		return "", ErrDisabled
	}
	e, err := s.evolutions.Get(ctx, actor, evolutionID)
	if err != nil {
		return "", err
	}
	if !slices.Contains(e.Attachments, key) {
		return "", ErrNotFound
	}
	return s.blobs.PresignDownload(ctx, key)
}
