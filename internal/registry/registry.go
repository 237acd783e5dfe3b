// Package registry implements the service-request registry collaborator.
// The core only needs to confirm that a request id exists before accepting
// documents against it; the request lifecycle is owned elsewhere.
package registry

import (
	"context"
	"database/sql"
)

// RequestRegistry confirms the existence of a service request.
type RequestRegistry interface {
	Exists(ctx context.Context, requestID int64) (bool, error)
}

// RequestPostgres checks request ids against the service_requests table.
type RequestPostgres struct {
	db *sql.DB
}

func NewRequestPostgres(db *sql.DB) *RequestPostgres {
	return &RequestPostgres{db: db}
}

var _ RequestRegistry = (*RequestPostgres)(nil)

func (r *RequestPostgres) Exists(ctx context.Context, requestID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM service_requests WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, requestID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
