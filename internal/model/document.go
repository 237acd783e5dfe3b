// Package model contains domain models/data structures.
// Keep it free of database- and transport-specific dependencies.
package model

import "time"

// Status is the lifecycle state of a document. The set is closed: active
// documents may become archived (retention sweep) or deleted (owner/admin);
// archived and deleted are terminal.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusArchived || s == StatusDeleted
}

// CanTransition reports whether s -> to is a permitted transition.
func (s Status) CanTransition(to Status) bool {
	if s != StatusActive {
		return false
	}
	return to == StatusArchived || to == StatusDeleted
}

// StorageType identifies the backend holding a document's bytes.
// Only local filesystem storage is implemented.
type StorageType string

const StorageLocal StorageType = "local"

// Document represents one uploaded artifact attached to a service request.
// OwnerUserID, RequestID, and DocumentTypeID are weak references to entities
// owned by collaborating services; they are looked up, never owned.
type Document struct {
	ID             int64       `json:"id"`
	OwnerUserID    int64       `json:"owner_user_id"`
	RequestID      int64       `json:"request_id"`
	DocumentTypeID int64       `json:"document_type_id"`
	FileName       string      `json:"file_name"`
	FileType       string      `json:"file_type"` // lowercase extension without dot
	SizeBytes      int64       `json:"size_bytes"`
	StoragePath    string      `json:"storage_path"`
	StorageType    StorageType `json:"storage_type"`
	Status         Status      `json:"status"`
	IsVerified     bool        `json:"is_verified"`
	VerifiedBy     *int64      `json:"verified_by,omitempty"`
	VerifiedAt     *time.Time  `json:"verified_at,omitempty"`
	UploadDate     time.Time   `json:"upload_date"`
	ExpiryDate     time.Time   `json:"expiry_date"`
}
