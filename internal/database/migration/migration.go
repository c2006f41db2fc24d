package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step, so a partially applied schema is re-run.
const sentinelTable = "public.users"

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  owner          TEXT        NOT NULL,
  share_id       TEXT        NOT NULL,
  owner_name     TEXT        NOT NULL DEFAULT '',
  owner_surname  TEXT        NOT NULL DEFAULT '',
  owner_subject  TEXT        NOT NULL DEFAULT '',
  display_name   TEXT        NOT NULL,
  storage_key    TEXT        NOT NULL,
  size           BIGINT      NOT NULL CHECK (size >= 0),
  uploaded_at    TIMESTAMPTZ NOT NULL,
  expires_at     TIMESTAMPTZ NOT NULL,
  people         TEXT[]      NOT NULL DEFAULT '{}',
  PRIMARY KEY (owner, share_id),
  CHECK (expires_at >= uploaded_at)
);`,
	},
	{
		Name: "create_index_documents_share_id",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_share_id ON documents (share_id);`,
	},
	{
		Name: "create_index_documents_people",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_people ON documents USING GIN (people);`,
	},
	{
		Name: "create_index_documents_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_expires_at ON documents (expires_at);`,
	},
	{
		Name: "create_table_audit_entries",
		SQL: `CREATE TABLE IF NOT EXISTS audit_entries (
  id             BIGSERIAL        PRIMARY KEY,
  actor_email    TEXT             NOT NULL,
  actor_name     TEXT             NOT NULL DEFAULT '',
  actor_surname  TEXT             NOT NULL DEFAULT '',
  share_id       TEXT             NOT NULL,
  storage_key    TEXT             NOT NULL,
  display_name   TEXT             NOT NULL,
  action         TEXT             NOT NULL,
  action_time    DOUBLE PRECISION NOT NULL,
  display_time   TEXT             NOT NULL
);`,
	},
	{
		Name: "create_index_audit_entries_action_time",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_entries_action_time ON audit_entries (action_time);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  subject_id  TEXT        PRIMARY KEY,
  email       TEXT        NOT NULL,
  name        TEXT        NOT NULL DEFAULT '',
  surname     TEXT        NOT NULL DEFAULT '',
  role        TEXT        NOT NULL DEFAULT '',
  seen_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks the sentinel table and applies the schema steps if it is missing.
// Every step is idempotent.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('%s') IS NOT NULL", sentinelTable)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("msg", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}
