package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/activity-tracker/internal/logger"
	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/repository"
	"github.com/iliyamo/activity-tracker/internal/storage"
)

// FileStorage keeps document bytes.
type FileStorage interface {
	Save(ctx context.Context, originalName string, r io.Reader, limit int64) (string, int64, error)
	Open(key string) (io.ReadCloser, error)
	Remove(key string) error
}

// Upload is a document received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// DocumentService attaches files to activities.  Only the activity owner
// may upload or delete; the owner's supervisor may list and download.
type DocumentService struct {
	documents DocumentStore
	files     FileStorage
	access    *ActivityService
	maxBytes  int64
	log       *logger.Logger
}

func NewDocumentService(documents DocumentStore, files FileStorage, access *ActivityService, maxBytes int64, log *logger.Logger) *DocumentService {
	if log == nil {
		log = logger.NewNop()
	}
	return &DocumentService{documents: documents, files: files, access: access, maxBytes: maxBytes, log: log}
}

// Upload stores the file and its metadata.
func (s *DocumentService) Upload(ctx context.Context, caller Caller, activityID uint64, up Upload) (*model.Document, error) {
	name := strings.TrimSpace(filepath.Base(up.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, Invalid("archivo", "nombre de archivo requerido")
	}
	a, err := s.access.load(ctx, caller, activityID, ActionWrite)
	if err != nil {
		return nil, err
	}

	key, size, err := s.files.Save(ctx, name, up.Body, s.maxBytes)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, Invalid("archivo", "el archivo supera el tamaño máximo de %d bytes", s.maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	ct := strings.TrimSpace(up.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = storage.ContentType(name)
	}
	d := &model.Document{
		ActivityID:  a.ID,
		UserID:      caller.ID,
		FileName:    name,
		ContentType: ct,
		SizeBytes:   size,
		StoragePath: key,
	}
	if err := s.documents.Create(ctx, d); err != nil {
		if rerr := s.files.Remove(key); rerr != nil {
			s.log.Warn("remove orphaned file failed", zap.String("key", key), zap.Error(rerr))
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

// List returns the documents of an activity.
func (s *DocumentService) List(ctx context.Context, caller Caller, activityID uint64) ([]model.Document, error) {
	a, err := s.access.load(ctx, caller, activityID, ActionRead)
	if err != nil {
		return nil, err
	}
	out, err := s.documents.ListByActivity(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

func (s *DocumentService) load(ctx context.Context, caller Caller, id uint64, action Action) (*model.Document, error) {
	d, err := s.documents.GetByID(ctx, id)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, newError(ErrNotFound, "documento no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if _, err := s.access.load(ctx, caller, d.ActivityID, action); err != nil {
		return nil, err
	}
	return d, nil
}

// Open returns the metadata and content of a document.  The caller closes
// the reader.
func (s *DocumentService) Open(ctx context.Context, caller Caller, id uint64) (*model.Document, io.ReadCloser, error) {
	d, err := s.load(ctx, caller, id, ActionRead)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(d.StoragePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, newError(ErrNotFound, "el contenido del documento no está disponible")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open document: %w", err)
	}
	return d, rc, nil
}

// Delete removes a document and its content.
func (s *DocumentService) Delete(ctx context.Context, caller Caller, id uint64) error {
	d, err := s.load(ctx, caller, id, ActionDelete)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.files.Remove(d.StoragePath); err != nil {
		s.log.Warn("remove document file failed", zap.Uint64("document_id", d.ID), zap.Error(err))
	}
	return nil
}
