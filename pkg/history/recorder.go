// pkg/history/recorder.go
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/config"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

// appliedFixRow is the insert shape for the audit table
type appliedFixRow struct {
	ID            string  `db:"id"`
	SessionID     string  `db:"session_id"`
	RowNumber     int     `db:"row_number"`
	ColumnName    string  `db:"column_name"`
	OriginalValue *string `db:"original_value"`
	NewValue      string  `db:"new_value"`
	FixOrigin     string  `db:"fix_origin"`
	AppliedAt     string  `db:"applied_at"`
}

// Recorder persists applied fixes to Postgres so every automated change to a
// dataset can be audited after the fact. It is optional; sessions run fine
// without one.
type Recorder struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRecorder connects to Postgres and ensures the audit table exists
func NewRecorder(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*Recorder, error) {
	if cfg == nil {
		return nil, errors.New("postgres config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	recorder := &Recorder{
		db:     db,
		logger: logger.Named("fix-history"),
	}

	if err := recorder.setupAuditTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup audit table: %w", err)
	}

	return recorder, nil
}

// setupAuditTable ensures the applied_fixes tracking table exists
func (r *Recorder) setupAuditTable(ctx context.Context) error {
	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.applied_fixes (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL,
			row_number INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			fix_origin TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`
	_, err := r.db.ExecContext(setupCtx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create applied_fixes table: %w", err)
	}

	r.logger.Info("Ensured applied_fixes table exists")
	return nil
}

// RecordAppliedFixes batch inserts a session's applied fixes in one transaction
func (r *Recorder) RecordAppliedFixes(ctx context.Context, sessionID string, fixes []model.AppliedFix) error {
	if len(fixes) == 0 {
		return nil
	}

	insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := r.db.BeginTxx(insertCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PrepareNamedContext(insertCtx, `
		INSERT INTO public.applied_fixes
		(id, session_id, row_number, column_name, original_value, new_value,
		 fix_origin, applied_at)
		VALUES (:id, :session_id, :row_number, :column_name, :original_value,
		 :new_value, :fix_origin, :applied_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, fix := range fixes {
		row := appliedFixRow{
			ID:            uuid.New().String(),
			SessionID:     sessionID,
			RowNumber:     fix.Row,
			ColumnName:    fix.Column,
			OriginalValue: toNullableString(fix.OriginalValue),
			NewValue:      fix.NewValue,
			FixOrigin:     string(fix.Origin),
			AppliedAt:     fix.AppliedAt.UTC().Format(time.RFC3339),
		}
		if _, err = stmt.ExecContext(insertCtx, row); err != nil {
			return fmt.Errorf("failed to insert applied fix: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded applied fixes",
		zap.String("sessionID", sessionID),
		zap.Int("count", len(fixes)))
	return nil
}

// SessionFixCount returns how many fixes were recorded for a session
func (r *Recorder) SessionFixCount(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM public.applied_fixes WHERE session_id = $1", sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to count session fixes: %w", err)
	}
	return count, nil
}

// Close closes the underlying connection pool
func (r *Recorder) Close() error {
	r.logger.Info("Closing fix-history connection")
	return r.db.Close()
}

// toNullableString converts an original cell value to a nullable column value
func toNullableString(v interface{}) *string {
	if model.IsNull(v) {
		return nil
	}
	s := model.ValueString(v)
	return &s
}
