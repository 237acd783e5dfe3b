package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"civicdocs/internal/model"
	"civicdocs/internal/repository"
	"civicdocs/internal/storage"
)

// RetentionService enforces the retention policy: documents past their expiry
// date are archived and their files removed.
type RetentionService interface {
	// Sweep archives every active document whose expiry date has passed and
	// returns how many rows it processed. Safe to invoke repeatedly and
	// concurrently; each row is claimed by a conditional update before its
	// file is touched, so overlapping sweeps never double-count.
	Sweep(ctx context.Context) (processed int, err error)
}

type retentionService struct {
	repo  repository.DocumentRepository
	store storage.Storage
	now   func() time.Time

	sweepRuns       prometheus.Counter
	archivedTotal   prometheus.Counter
	removalFailures prometheus.Counter
}

// NewRetentionService constructs a RetentionService and registers its metrics
// with reg (nil skips registration, for callers without a registry).
func NewRetentionService(repo repository.DocumentRepository, store storage.Storage, reg prometheus.Registerer) RetentionService {
	s := &retentionService{
		repo:  repo,
		store: store,
		now:   time.Now,
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retention_sweep_runs_total",
			Help: "Total number of retention sweeps executed.",
		}),
		archivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retention_documents_archived_total",
			Help: "Total number of documents archived by retention sweeps.",
		}),
		removalFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retention_removal_failures_total",
			Help: "Total number of expired documents whose file removal failed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.sweepRuns, s.archivedTotal, s.removalFailures)
	}
	return s
}

func (s *retentionService) Sweep(ctx context.Context) (int, error) {
	s.sweepRuns.Inc()
	now := s.now().UTC()

	expired, err := s.repo.ListExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired documents: %w", err)
	}

	processed := 0
	for _, doc := range expired {
		claimed, err := s.repo.UpdateStatus(ctx, doc.ID, model.StatusArchived)
		if err != nil {
			// One row's failure must not abort the scan.
			s.logSweep("error", doc.ID, fmt.Sprintf("archive failed: %v", err))
			continue
		}
		if !claimed {
			// Another sweep or a delete got there first.
			continue
		}

		// Metadata-level expiry is already enforced; removal is best-effort.
		if err := s.store.Remove(ctx, doc.StoragePath); err != nil {
			s.removalFailures.Inc()
			s.logSweep("warn", doc.ID, fmt.Sprintf("file removal failed: %v", err))
		}

		s.archivedTotal.Inc()
		processed++
	}

	s.logSweep("info", 0, fmt.Sprintf("sweep complete, archived %d of %d expired", processed, len(expired)))
	return processed, nil
}

func (s *retentionService) logSweep(level string, docID int64, msg string) {
	entry := map[string]any{
		"ts":        s.now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"component": "retention",
		"msg":       msg,
	}
	if docID != 0 {
		entry["document_id"] = docID
	}

	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
