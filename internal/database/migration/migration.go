package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_service_requests",
		SQL: `CREATE TABLE IF NOT EXISTS service_requests (
  id         BIGSERIAL   PRIMARY KEY,
  user_id    BIGINT      NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               BIGSERIAL   PRIMARY KEY,
  owner_user_id    BIGINT      NOT NULL,
  request_id       BIGINT      NOT NULL REFERENCES service_requests (id),
  document_type_id BIGINT      NOT NULL,
  file_name        TEXT        NOT NULL,
  file_type        TEXT        NOT NULL,
  size_bytes       BIGINT      NOT NULL CHECK (size_bytes > 0),
  storage_path     TEXT        NOT NULL,
  storage_type     TEXT        NOT NULL DEFAULT 'local',
  status           TEXT        NOT NULL DEFAULT 'active'
                               CHECK (status IN ('active', 'archived', 'deleted')),
  is_verified      BOOLEAN     NOT NULL DEFAULT FALSE,
  verified_by      BIGINT,
  verified_at      TIMESTAMPTZ,
  upload_date      TIMESTAMPTZ NOT NULL DEFAULT now(),
  expiry_date      TIMESTAMPTZ NOT NULL,
  CHECK (expiry_date > upload_date)
);`,
	},
	{
		// Deleted rows release their storage path so a re-upload can reuse it.
		Name: "create_unique_index_documents_storage_path",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_documents_storage_path
  ON documents (storage_path) WHERE status <> 'deleted';`,
	},
	{
		Name: "create_index_documents_request_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_request_status ON documents (request_id, status);`,
	},
	{
		Name: "create_index_documents_status_expiry",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_status_expiry ON documents (status, expiry_date);`,
	},
	{
		Name: "create_index_documents_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents (owner_user_id);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
