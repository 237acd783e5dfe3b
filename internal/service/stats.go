package service

import (
	"context"
	"fmt"

	"civicdocs/internal/repository"
)

// StorageStats is the operational reporting rollup over active documents.
type StorageStats struct {
	TotalDocuments   int64                   `json:"total_documents"`
	TotalSizeBytes   int64                   `json:"total_size_bytes"`
	AverageSizeBytes int64                   `json:"average_size_bytes"`
	ByStorageType    []repository.StatsGroup `json:"by_storage_type"`
	ByFileType       []repository.StatsGroup `json:"by_file_type"`
}

// StatsService computes read-only aggregates over the document store.
type StatsService interface {
	Stats(ctx context.Context) (*StorageStats, error)
}

type statsService struct {
	repo repository.DocumentRepository
}

func NewStatsService(repo repository.DocumentRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) Stats(ctx context.Context) (*StorageStats, error) {
	res, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	stats := &StorageStats{
		TotalDocuments: res.TotalDocuments,
		TotalSizeBytes: res.TotalSizeBytes,
		ByStorageType:  res.ByStorageType,
		ByFileType:     res.ByFileType,
	}
	if res.TotalDocuments > 0 {
		stats.AverageSizeBytes = res.TotalSizeBytes / res.TotalDocuments
	}
	return stats, nil
}
