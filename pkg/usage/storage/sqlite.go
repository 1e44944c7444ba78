package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" (CGO) driver
	_ "modernc.org/sqlite"          // registers the "sqlite" (pure Go) driver

	"mercator-hq/ganymede/pkg/usage"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the SQL driver: "sqlite" (pure Go) or "sqlite3"
	// (CGO). Default: "sqlite"
	Driver string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long a writer waits for a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/usage.db",
		Driver:       "sqlite",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements usage.Storage backed by SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// usageColumns is the canonical column list. Insert, select, and scan all
// share this order.
const usageColumns = `id, recorded_at, fingerprint, provider, model, status,
	tokens_used, response_time_ms, cached, scope, attempts, error_message`

// NewSQLiteStorage opens the database, creates the schema, and enables
// WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	driver := config.Driver
	if driver == "" {
		driver = "sqlite"
	}

	logger := slog.Default().With("component", "usage.storage.sqlite")

	db, err := sql.Open(driver, config.Path)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite usage storage initialized",
		"path", config.Path,
		"driver", driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return usage.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		stmt := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(stmt); err != nil {
			return usage.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return usage.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return usage.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return usage.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return usage.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a usage record.
func (s *SQLiteStorage) Store(ctx context.Context, record *usage.Record) error {
	query := `INSERT INTO usage_records (` + usageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var errMsg interface{}
	if record.ErrorMessage != "" {
		errMsg = record.ErrorMessage
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Time, record.Fingerprint, record.Provider,
		record.Model, record.Status, record.TokensUsed,
		record.ResponseTime.Milliseconds(), record.Cached, record.Scope,
		record.Attempts, errMsg,
	)
	if err != nil {
		return usage.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves usage records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *usage.Query) ([]*usage.Record, error) {
	sqlQuery, args := s.buildSelect(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*usage.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, usage.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, usage.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream returns matching records over a channel. Use this for large
// result sets to avoid loading everything in memory.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *usage.Query) (<-chan *usage.Record, <-chan error, error) {
	recordsCh := make(chan *usage.Record, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := s.buildSelect(query)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- usage.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRow(rows)
			if err != nil {
				errCh <- usage.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- usage.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *usage.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM usage_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, usage.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes records matching the query filters and returns how many
// were removed.
func (s *SQLiteStorage) Delete(ctx context.Context, query *usage.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM usage_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, usage.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, usage.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return usage.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite usage storage closed")
	return nil
}

// sortColumns whitelists sortable columns; anything else falls back to
// recorded_at to keep user input out of the SQL text.
var sortColumns = map[string]string{
	"time":          "recorded_at",
	"tokens":        "tokens_used",
	"response_time": "response_time_ms",
}

func (s *SQLiteStorage) buildSelect(query *usage.Query) (string, []interface{}) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT " + usageColumns + " FROM usage_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sortBy := "recorded_at"
	if col, ok := sortColumns[query.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	return sqlQuery, args
}

func buildWhereClause(query *usage.Query) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if query.StartTime != nil {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, *query.EndTime)
	}
	if query.Provider != "" {
		conds = append(conds, "provider = ?")
		args = append(args, query.Provider)
	}
	if query.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, query.Model)
	}
	if query.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, query.Status)
	}
	if query.Scope != "" {
		conds = append(conds, "scope = ?")
		args = append(args, query.Scope)
	}
	if query.Cached != nil {
		conds = append(conds, "cached = ?")
		args = append(args, *query.Cached)
	}
	if query.MinTokens != nil {
		conds = append(conds, "tokens_used >= ?")
		args = append(args, *query.MinTokens)
	}
	if query.MaxTokens != nil {
		conds = append(conds, "tokens_used <= ?")
		args = append(args, *query.MaxTokens)
	}

	return strings.Join(conds, " AND "), args
}

func scanRow(rows *sql.Rows) (*usage.Record, error) {
	var record usage.Record
	var responseTimeMs int64
	var errMsg sql.NullString

	err := rows.Scan(
		&record.ID, &record.Time, &record.Fingerprint, &record.Provider,
		&record.Model, &record.Status, &record.TokensUsed,
		&responseTimeMs, &record.Cached, &record.Scope,
		&record.Attempts, &errMsg,
	)
	if err != nil {
		return nil, err
	}

	record.ResponseTime = time.Duration(responseTimeMs) * time.Millisecond
	if errMsg.Valid {
		record.ErrorMessage = errMsg.String
	}

	return &record, nil
}
