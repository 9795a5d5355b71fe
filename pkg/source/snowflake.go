// pkg/source/snowflake.go
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/config"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

// SnowflakeSource runs a single query against Snowflake and materializes the
// result set as a table
type SnowflakeSource struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
	query  string
}

// NewSnowflakeSource opens a Snowflake connection for the given query
func NewSnowflakeSource(ctx context.Context, cfg *config.SnowflakeConfig, query string) (*SnowflakeSource, error) {
	if cfg == nil {
		return nil, errors.New("snowflake config cannot be nil")
	}
	if query == "" {
		return nil, errors.New("query cannot be empty")
	}

	logger := zap.L().Named("snowflake-source")

	// Create DSN using Snowflake's DSN builder
	sfConfig := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse))

	dsn, err := sf.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	return &SnowflakeSource{
		db:     db,
		logger: logger,
		cfg:    cfg,
		query:  query,
	}, nil
}

// Load executes the query and drains the full result set into memory
func (s *SnowflakeSource) Load(ctx context.Context) (*model.Table, error) {
	queryCtx := ctx
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	started := time.Now()
	rows, err := s.db.QueryContext(queryCtx, s.query)
	if err != nil {
		return nil, fmt.Errorf("snowflake query failed: %w", err)
	}
	defer rows.Close()

	table, err := rowsToTable(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded Snowflake result set",
		zap.Int("columns", len(table.Columns)),
		zap.Int("rows", table.RowCount()),
		zap.Duration("elapsed", time.Since(started)))

	return table, nil
}

// Close closes the underlying connection pool
func (s *SnowflakeSource) Close() error {
	s.logger.Info("Closing Snowflake connection")
	return s.db.Close()
}
