// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g. postgres) inside this directory.
package repository

import (
	"context"
	"time"

	"civicdocs/internal/model"
)

// DocumentRepository defines persistence for document metadata rows using SQL
// queries only. No business logic here.
//
// UpdateStatus and UpdateVerification are conditional updates: the WHERE
// clause requires the row to still be active, so a caller that lost a race
// against a concurrent mutation affects zero rows and gets claimed=false
// instead of silently overwriting a terminal status.
type DocumentRepository interface {
	// Create inserts a new document row and returns it with DB-assigned fields.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// GetByID returns a document by id, sql.ErrNoRows-wrapped error if absent.
	GetByID(ctx context.Context, id int64) (*model.Document, error)

	// ListByRequest returns active documents for a request, newest upload first.
	ListByRequest(ctx context.Context, requestID int64) ([]model.Document, error)

	// ListExpired returns active documents whose expiry date has passed.
	ListExpired(ctx context.Context, now time.Time) ([]model.Document, error)

	// UpdateStatus transitions id from active to the given status. claimed is
	// false when the row is absent or no longer active.
	UpdateStatus(ctx context.Context, id int64, to model.Status) (claimed bool, err error)

	// UpdateVerification marks an active document verified, recording who and
	// when. claimed is false when the row is absent or no longer active.
	UpdateVerification(ctx context.Context, id int64, verifiedBy int64, at time.Time) (claimed bool, err error)

	// Stats aggregates counts and byte totals over active rows.
	Stats(ctx context.Context) (*StatsResult, error)
}

// StatsGroup is one line of a grouped rollup (per storage type or file type).
type StatsGroup struct {
	Key            string `json:"key"`
	Count          int64  `json:"count"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
}

// StatsResult holds raw aggregates over active documents.
type StatsResult struct {
	TotalDocuments int64
	TotalSizeBytes int64
	ByStorageType  []StatsGroup
	ByFileType     []StatsGroup
}
