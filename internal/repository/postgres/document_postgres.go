package postgres

import (
	"context"
	"database/sql"
	"time"

	"civicdocs/internal/model"
	"civicdocs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, owner_user_id, request_id, document_type_id, file_name, file_type,
size_bytes, storage_path, storage_type, status, is_verified, verified_by, verified_at,
upload_date, expiry_date`

func scanDocument(row interface{ Scan(dest ...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.OwnerUserID,
		&d.RequestID,
		&d.DocumentTypeID,
		&d.FileName,
		&d.FileType,
		&d.SizeBytes,
		&d.StoragePath,
		&d.StorageType,
		&d.Status,
		&d.IsVerified,
		&d.VerifiedBy,
		&d.VerifiedAt,
		&d.UploadDate,
		&d.ExpiryDate,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (owner_user_id, request_id, document_type_id, file_name, file_type,
			size_bytes, storage_path, storage_type, status, upload_date, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + documentColumns

	row := r.db.QueryRowContext(ctx, q,
		doc.OwnerUserID,
		doc.RequestID,
		doc.DocumentTypeID,
		doc.FileName,
		doc.FileType,
		doc.SizeBytes,
		doc.StoragePath,
		doc.StorageType,
		doc.Status,
		doc.UploadDate,
		doc.ExpiryDate,
	)
	return scanDocument(row)
}

// GetByID fetches a single document by its id.
func (r *DocumentPostgres) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByRequest returns active documents for a request ordered newest first.
func (r *DocumentPostgres) ListByRequest(ctx context.Context, requestID int64) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE request_id = $1 AND status = 'active'
		ORDER BY upload_date DESC, id DESC
	`
	return r.queryDocuments(ctx, q, requestID)
}

// ListExpired returns active documents whose expiry date is at or before now.
func (r *DocumentPostgres) ListExpired(ctx context.Context, now time.Time) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE status = 'active' AND expiry_date <= $1
		ORDER BY expiry_date ASC, id ASC
	`
	return r.queryDocuments(ctx, q, now)
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus transitions a document out of active in a single conditional
// update. Zero rows affected means the row is gone or already terminal.
func (r *DocumentPostgres) UpdateStatus(ctx context.Context, id int64, to model.Status) (bool, error) {
	const q = `UPDATE documents SET status = $1 WHERE id = $2 AND status = 'active'`
	res, err := r.db.ExecContext(ctx, q, to, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateVerification marks an active document verified. The status guard makes
// verification of archived/deleted rows a no-op reported via claimed=false.
func (r *DocumentPostgres) UpdateVerification(ctx context.Context, id int64, verifiedBy int64, at time.Time) (bool, error) {
	const q = `
		UPDATE documents
		SET is_verified = TRUE, verified_by = $1, verified_at = $2
		WHERE id = $3 AND status = 'active'
	`
	res, err := r.db.ExecContext(ctx, q, verifiedBy, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Stats aggregates totals and per-type breakdowns over active rows.
func (r *DocumentPostgres) Stats(ctx context.Context) (*repository.StatsResult, error) {
	const qTotals = `
		SELECT COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM documents
		WHERE status = 'active'
	`
	var res repository.StatsResult
	if err := r.db.QueryRowContext(ctx, qTotals).Scan(&res.TotalDocuments, &res.TotalSizeBytes); err != nil {
		return nil, err
	}

	const qByStorage = `
		SELECT storage_type, COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM documents
		WHERE status = 'active'
		GROUP BY storage_type
		ORDER BY storage_type
	`
	byStorage, err := r.queryGroups(ctx, qByStorage)
	if err != nil {
		return nil, err
	}
	res.ByStorageType = byStorage

	const qByFileType = `
		SELECT file_type, COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM documents
		WHERE status = 'active'
		GROUP BY file_type
		ORDER BY file_type
	`
	byFileType, err := r.queryGroups(ctx, qByFileType)
	if err != nil {
		return nil, err
	}
	res.ByFileType = byFileType

	return &res, nil
}

func (r *DocumentPostgres) queryGroups(ctx context.Context, q string) ([]repository.StatsGroup, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]repository.StatsGroup, 0)
	for rows.Next() {
		var g repository.StatsGroup
		if err := rows.Scan(&g.Key, &g.Count, &g.TotalSizeBytes); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}
