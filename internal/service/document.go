package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"civicdocs/internal/auth"
	"civicdocs/internal/model"
	"civicdocs/internal/registry"
	"civicdocs/internal/repository"
	"civicdocs/internal/storage"
)

// UploadInput describes an upload candidate. SourcePath points at a temporary
// copy owned by the caller; the service copies it and never removes it.
type UploadInput struct {
	RequestID      int64
	OwnerID        int64
	DocumentTypeID int64
	SourcePath     string
	// FileName is the original upload name; defaults to the base of SourcePath.
	FileName string
	// ExpiryDays <= 0 selects the configured default.
	ExpiryDays int
}

// UploadResult is returned to the caller after a successful upload.
type UploadResult struct {
	DocumentID  int64     `json:"document_id"`
	FileName    string    `json:"file_name"`
	FileSizeMB  float64   `json:"file_size_mb"`
	StoragePath string    `json:"storage_path"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// DocumentListItem is the per-request listing DTO.
type DocumentListItem struct {
	ID                int64        `json:"id"`
	FileName          string       `json:"file_name"`
	FileType          string       `json:"file_type"`
	FileSizeMB        float64      `json:"file_size_mb"`
	FileSizeFormatted string       `json:"file_size_formatted"`
	UploadDate        time.Time    `json:"upload_date"`
	IsVerified        bool         `json:"is_verified"`
	Status            model.Status `json:"status"`
	DocumentTypeID    int64        `json:"document_type_id"`
}

// DocumentService defines the document lifecycle use cases.
type DocumentService interface {
	// Upload validates the candidate, copies it into storage, and inserts the
	// metadata row. The physical copy precedes the insert; a failed insert
	// leaves the copied artifact in place for manual remediation.
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)

	// Get returns a document by id regardless of status.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// ListByRequest returns active documents for a request, newest first.
	ListByRequest(ctx context.Context, requestID int64) ([]DocumentListItem, error)

	// Download resolves an active document to a readable filesystem path.
	Download(ctx context.Context, id int64) (path string, fileName string, err error)

	// Verify marks an active document verified, recording who and when.
	// Re-verifying overwrites verifier and timestamp.
	Verify(ctx context.Context, id int64, verifierID int64) error

	// Delete transitions a document to deleted and removes its file
	// best-effort. Only the owner or an admin may delete.
	Delete(ctx context.Context, id int64, actorID int64, actorRole string) error
}

type documentService struct {
	store             storage.Storage
	repo              repository.DocumentRepository
	requests          registry.RequestRegistry
	maxUploadBytes    int64
	defaultExpiryDays int
	now               func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, requests registry.RequestRegistry, maxUploadBytes int64, defaultExpiryDays int) DocumentService {
	return &documentService{
		store:             store,
		repo:              repo,
		requests:          requests,
		maxUploadBytes:    maxUploadBytes,
		defaultExpiryDays: defaultExpiryDays,
		now:               time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	exists, err := s.requests.Exists(ctx, in.RequestID)
	if err != nil {
		return nil, fmt.Errorf("check service request: %w", err)
	}
	if !exists {
		return nil, ErrRequestNotFound
	}

	if err := ValidateFile(in.SourcePath, s.maxUploadBytes); err != nil {
		return nil, err
	}

	fileName := in.FileName
	if fileName == "" {
		fileName = filepath.Base(in.SourcePath)
	}
	fileType := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	expiryDays := in.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = s.defaultExpiryDays
	}

	now := s.now().UTC()
	key := storage.BuildKey(in.RequestID, in.OwnerID, now, fileName)

	src, err := os.Open(in.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer src.Close()

	info, err := s.store.Save(ctx, key, src)
	if err != nil {
		return nil, fmt.Errorf("copy to storage: %w", err)
	}

	doc := &model.Document{
		OwnerUserID:    in.OwnerID,
		RequestID:      in.RequestID,
		DocumentTypeID: in.DocumentTypeID,
		FileName:       fileName,
		FileType:       fileType,
		SizeBytes:      info.Size,
		StoragePath:    key,
		StorageType:    model.StorageLocal,
		Status:         model.StatusActive,
		UploadDate:     now,
		ExpiryDate:     now.AddDate(0, 0, expiryDays),
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// The copied artifact is left in place; there is no automatic
		// reconciliation for orphans.
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	return &UploadResult{
		DocumentID:  stored.ID,
		FileName:    stored.FileName,
		FileSizeMB:  roundMB(stored.SizeBytes),
		StoragePath: stored.StoragePath,
		ExpiryDate:  stored.ExpiryDate,
	}, nil
}

func (s *documentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

func (s *documentService) ListByRequest(ctx context.Context, requestID int64) ([]DocumentListItem, error) {
	docs, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	items := make([]DocumentListItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, DocumentListItem{
			ID:                d.ID,
			FileName:          d.FileName,
			FileType:          d.FileType,
			FileSizeMB:        roundMB(d.SizeBytes),
			FileSizeFormatted: formatSize(d.SizeBytes),
			UploadDate:        d.UploadDate,
			IsVerified:        d.IsVerified,
			Status:            d.Status,
			DocumentTypeID:    d.DocumentTypeID,
		})
	}
	return items, nil
}

func (s *documentService) Download(ctx context.Context, id int64) (string, string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if doc.Status != model.StatusActive {
		return "", "", ErrNotFound
	}

	exists, err := s.store.Exists(ctx, doc.StoragePath)
	if err != nil {
		return "", "", fmt.Errorf("check stored file: %w", err)
	}
	if !exists {
		return "", "", ErrNotFound
	}

	return s.store.AbsPath(doc.StoragePath), doc.FileName, nil
}

func (s *documentService) Verify(ctx context.Context, id int64, verifierID int64) error {
	claimed, err := s.repo.UpdateVerification(ctx, id, verifierID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	if !claimed {
		return s.mutationFailure(ctx, id)
	}
	return nil
}

func (s *documentService) Delete(ctx context.Context, id int64, actorID int64, actorRole string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.OwnerUserID != actorID && actorRole != auth.RoleAdmin {
		return ErrForbidden
	}

	claimed, err := s.repo.UpdateStatus(ctx, id, model.StatusDeleted)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !claimed {
		return s.mutationFailure(ctx, id)
	}

	// Best-effort: the row is already terminal, a lingering file is reclaimed
	// by manual cleanup.
	_ = s.store.Remove(ctx, doc.StoragePath)
	return nil
}

// mutationFailure resolves a zero-row conditional update to NotFound (row
// absent) or Conflict (row reached a terminal status first).
func (s *documentService) mutationFailure(ctx context.Context, id int64) error {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	return ErrConflict
}
