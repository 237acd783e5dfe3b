package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"civicdocs/internal/auth"
	"civicdocs/internal/model"
	registryMocks "civicdocs/internal/registry/mocks"
	repoMocks "civicdocs/internal/repository/mocks"
	"civicdocs/internal/storage"
	storeMocks "civicdocs/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestDocumentService(store *storeMocks.MockStorage, repo *repoMocks.MockDocumentRepository, requests *registryMocks.MockRequestRegistry) *documentService {
	return &documentService{
		store:             store,
		repo:              repo,
		requests:          requests,
		maxUploadBytes:    10 * 1024 * 1024,
		defaultExpiryDays: 365,
		now:               func() time.Time { return fixedNow },
	}
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mReg := new(registryMocks.MockRequestRegistry)
		svc := newTestDocumentService(mStore, mRepo, mReg)

		src := writeTestFile(t, "id.pdf", 2_000_000)
		wantKey := "req_7/3_20250314_092653_id.pdf"

		mReg.On("Exists", ctx, int64(7)).Return(true, nil)
		mStore.On("Save", ctx, wantKey, mock.Anything).
			Return(storage.ObjectInfo{Key: wantKey, Size: 2_000_000}, nil)
		mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.RequestID == 7 &&
				doc.OwnerUserID == 3 &&
				doc.FileType == "pdf" &&
				doc.SizeBytes == 2_000_000 &&
				doc.Status == model.StatusActive &&
				doc.StorageType == model.StorageLocal &&
				doc.UploadDate.Equal(fixedNow) &&
				doc.ExpiryDate.Equal(fixedNow.AddDate(0, 0, 365))
		})).Return(&model.Document{
			ID:          15,
			FileName:    "id.pdf",
			SizeBytes:   2_000_000,
			StoragePath: wantKey,
			ExpiryDate:  fixedNow.AddDate(0, 0, 365),
		}, nil)

		res, err := svc.Upload(ctx, UploadInput{
			RequestID:      7,
			OwnerID:        3,
			DocumentTypeID: 1,
			SourcePath:     src,
			FileName:       "id.pdf",
			ExpiryDays:     365,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(15), res.DocumentID)
		assert.InDelta(t, 1.91, res.FileSizeMB, 0.001)
		assert.Equal(t, wantKey, res.StoragePath)
		assert.Equal(t, fixedNow.AddDate(0, 0, 365), res.ExpiryDate)

		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
		mReg.AssertExpectations(t)
	})

	t.Run("unknown service request", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mReg := new(registryMocks.MockRequestRegistry)
		svc := newTestDocumentService(mStore, mRepo, mReg)

		mReg.On("Exists", ctx, int64(404)).Return(false, nil)

		_, err := svc.Upload(ctx, UploadInput{RequestID: 404, OwnerID: 3, SourcePath: "x.pdf"})

		assert.ErrorIs(t, err, ErrRequestNotFound)
		mStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validation failure mutates nothing", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mReg := new(registryMocks.MockRequestRegistry)
		svc := newTestDocumentService(mStore, mRepo, mReg)

		src := writeTestFile(t, "tool.exe", 100)
		mReg.On("Exists", ctx, int64(7)).Return(true, nil)

		_, err := svc.Upload(ctx, UploadInput{RequestID: 7, OwnerID: 3, SourcePath: src})

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		mStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mReg := new(registryMocks.MockRequestRegistry)
		svc := newTestDocumentService(mStore, mRepo, mReg)

		src := writeTestFile(t, "id.pdf", 100)
		mReg.On("Exists", ctx, int64(7)).Return(true, nil)
		mStore.On("Save", ctx, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("disk full"))

		_, err := svc.Upload(ctx, UploadInput{RequestID: 7, OwnerID: 3, SourcePath: src})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "copy to storage: disk full")
		mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("metadata failure leaves the artifact in place", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mReg := new(registryMocks.MockRequestRegistry)
		svc := newTestDocumentService(mStore, mRepo, mReg)

		src := writeTestFile(t, "id.pdf", 100)
		mReg.On("Exists", ctx, int64(7)).Return(true, nil)
		mStore.On("Save", ctx, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{Key: "req_7/key", Size: 100}, nil)
		mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		_, err := svc.Upload(ctx, UploadInput{RequestID: 7, OwnerID: 3, SourcePath: src})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save metadata: db fail")
		// The copy is orphaned, never rolled back.
		mStore.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})

	t.Run("expiry days default", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mReg := new(registryMocks.MockRequestRegistry)
		svc := newTestDocumentService(mStore, mRepo, mReg)

		src := writeTestFile(t, "id.pdf", 100)
		mReg.On("Exists", ctx, int64(7)).Return(true, nil)
		mStore.On("Save", ctx, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{Key: "req_7/key", Size: 100}, nil)
		mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.ExpiryDate.Equal(fixedNow.AddDate(0, 0, 365))
		})).Return(&model.Document{ID: 1, ExpiryDate: fixedNow.AddDate(0, 0, 365)}, nil)

		_, err := svc.Upload(ctx, UploadInput{RequestID: 7, OwnerID: 3, SourcePath: src, ExpiryDays: 0})

		require.NoError(t, err)
		mRepo.AssertExpectations(t)
	})
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(nil, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(&model.Document{ID: 15}, nil)

		doc, err := svc.Get(ctx, 15)

		require.NoError(t, err)
		assert.Equal(t, int64(15), doc.ID)
	})

	t.Run("not found maps sql.ErrNoRows", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(nil, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)

		_, err := svc.Get(ctx, 404)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_ListByRequest(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newTestDocumentService(nil, mRepo, nil)

	t3 := fixedNow
	t2 := fixedNow.Add(-time.Hour)
	t1 := fixedNow.Add(-2 * time.Hour)
	mRepo.On("ListByRequest", ctx, int64(7)).Return([]model.Document{
		{ID: 3, UploadDate: t3, SizeBytes: 2_000_000, FileName: "c.pdf", FileType: "pdf", Status: model.StatusActive},
		{ID: 2, UploadDate: t2, SizeBytes: 512000, FileName: "b.jpg", FileType: "jpg", Status: model.StatusActive},
		{ID: 1, UploadDate: t1, SizeBytes: 1024, FileName: "a.png", FileType: "png", Status: model.StatusActive},
	}, nil)

	items, err := svc.ListByRequest(ctx, 7)

	require.NoError(t, err)
	require.Len(t, items, 3)
	// Repository order (newest first) is preserved.
	assert.Equal(t, []int64{3, 2, 1}, []int64{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "1.91 MB", items[0].FileSizeFormatted)
	assert.Equal(t, "500.00 KB", items[1].FileSizeFormatted)
	assert.Equal(t, "1.00 KB", items[2].FileSizeFormatted)
}

func TestDocumentService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("active document with file on disk", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(&model.Document{
			ID: 15, FileName: "id.pdf", StoragePath: "req_7/key", Status: model.StatusActive,
		}, nil)
		mStore.On("Exists", ctx, "req_7/key").Return(true, nil)
		mStore.On("AbsPath", "req_7/key").Return("/data/local/req_7/key")

		path, name, err := svc.Download(ctx, 15)

		require.NoError(t, err)
		assert.Equal(t, "/data/local/req_7/key", path)
		assert.Equal(t, "id.pdf", name)
	})

	t.Run("archived document is not downloadable", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(&model.Document{
			ID: 15, Status: model.StatusArchived,
		}, nil)

		_, _, err := svc.Download(ctx, 15)

		assert.ErrorIs(t, err, ErrNotFound)
		mStore.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})

	t.Run("missing file on disk", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(&model.Document{
			ID: 15, StoragePath: "req_7/key", Status: model.StatusActive,
		}, nil)
		mStore.On("Exists", ctx, "req_7/key").Return(false, nil)

		_, _, err := svc.Download(ctx, 15)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("claims active document", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(nil, mRepo, nil)

		mRepo.On("UpdateVerification", ctx, int64(15), int64(99), fixedNow).Return(true, nil)

		assert.NoError(t, svc.Verify(ctx, 15, 99))
		mRepo.AssertExpectations(t)
	})

	t.Run("terminal document reports conflict", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(nil, mRepo, nil)

		mRepo.On("UpdateVerification", ctx, int64(15), int64(99), fixedNow).Return(false, nil)
		mRepo.On("GetByID", ctx, int64(15)).Return(&model.Document{ID: 15, Status: model.StatusDeleted}, nil)

		assert.ErrorIs(t, svc.Verify(ctx, 15, 99), ErrConflict)
	})

	t.Run("absent document reports not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(nil, mRepo, nil)

		mRepo.On("UpdateVerification", ctx, int64(404), int64(99), fixedNow).Return(false, nil)
		mRepo.On("GetByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Verify(ctx, 404, 99), ErrNotFound)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	ownedDoc := &model.Document{ID: 15, OwnerUserID: 3, StoragePath: "req_7/key", Status: model.StatusActive}

	t.Run("owner deletes own document", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(ownedDoc, nil)
		mRepo.On("UpdateStatus", ctx, int64(15), model.StatusDeleted).Return(true, nil)
		mStore.On("Remove", ctx, "req_7/key").Return(nil)

		assert.NoError(t, svc.Delete(ctx, 15, 3, auth.RoleCitizen))
		mStore.AssertExpectations(t)
	})

	t.Run("admin deletes any document", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(ownedDoc, nil)
		mRepo.On("UpdateStatus", ctx, int64(15), model.StatusDeleted).Return(true, nil)
		mStore.On("Remove", ctx, "req_7/key").Return(nil)

		assert.NoError(t, svc.Delete(ctx, 15, 1, auth.RoleAdmin))
	})

	t.Run("non-owner citizen is forbidden", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(ownedDoc, nil)

		assert.ErrorIs(t, svc.Delete(ctx, 15, 8, auth.RoleCitizen), ErrForbidden)
		mRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race reports conflict", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).
			Return(ownedDoc, nil).Once()
		mRepo.On("UpdateStatus", ctx, int64(15), model.StatusDeleted).Return(false, nil)
		mRepo.On("GetByID", ctx, int64(15)).
			Return(&model.Document{ID: 15, OwnerUserID: 3, Status: model.StatusArchived}, nil)

		assert.ErrorIs(t, svc.Delete(ctx, 15, 3, auth.RoleCitizen), ErrConflict)
		mStore.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})

	t.Run("file removal failure does not fail the delete", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(mStore, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(15)).Return(ownedDoc, nil)
		mRepo.On("UpdateStatus", ctx, int64(15), model.StatusDeleted).Return(true, nil)
		mStore.On("Remove", ctx, "req_7/key").Return(errors.New("in use"))

		assert.NoError(t, svc.Delete(ctx, 15, 3, auth.RoleCitizen))
	})

	t.Run("absent document reports not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newTestDocumentService(nil, mRepo, nil)

		mRepo.On("GetByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(ctx, 404, 3, auth.RoleCitizen), ErrNotFound)
	})
}

// Round trip through real local storage: what goes in through Upload comes
// back byte-identical through Download.
func TestDocumentService_UploadDownloadRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	mRepo := new(repoMocks.MockDocumentRepository)
	mReg := new(registryMocks.MockRequestRegistry)
	svc := &documentService{
		store:             store,
		repo:              mRepo,
		requests:          mReg,
		maxUploadBytes:    10 * 1024 * 1024,
		defaultExpiryDays: 365,
		now:               func() time.Time { return fixedNow },
	}

	content := []byte("national id scan bytes")
	src := writeTestFile(t, "id.pdf", 1)
	require.NoError(t, os.WriteFile(src, content, 0o644))

	wantKey := "req_7/3_20250314_092653_id.pdf"
	mReg.On("Exists", ctx, int64(7)).Return(true, nil)
	mRepo.On("Create", ctx, mock.Anything).Return(&model.Document{
		ID: 15, FileName: "id.pdf", SizeBytes: int64(len(content)), StoragePath: wantKey,
	}, nil)

	res, err := svc.Upload(ctx, UploadInput{RequestID: 7, OwnerID: 3, SourcePath: src, FileName: "id.pdf"})
	require.NoError(t, err)
	require.Equal(t, wantKey, res.StoragePath)

	mRepo.On("GetByID", ctx, int64(15)).Return(&model.Document{
		ID: 15, FileName: "id.pdf", StoragePath: wantKey, Status: model.StatusActive,
	}, nil)

	path, name, err := svc.Download(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, "id.pdf", name)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
