package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"book-catalog/config"

	"go.uber.org/zap"
)

// Statements issued against the books table.
const (
	insertBookSQL       = `INSERT INTO books (title, author, is_available) VALUES (?, ?, ?)`
	selectBooksSQL      = `SELECT * FROM books`
	updateBookSQL       = `UPDATE books SET title = ?, author = ?, is_available = ? WHERE id = ?`
	updateBookStatusSQL = `UPDATE books SET is_available = ? WHERE id = ?`
	deleteBookSQL       = `DELETE FROM books WHERE id = ?`
)

// Store runs single statements against the books table. Every call acquires
// its own connection and releases it before returning; no idle connections
// are kept, so nothing is pooled between calls.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

var _ BookStore = (*Store)(nil)

// Open prepares a store for the configured database and, when AutoMigrate is
// set, creates the books table.
func Open(ctx context.Context, cfg config.Database, logger *zap.Logger) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Ensure directory exists so first-run succeeds.
	if d.name == config.DriverSQLite && cfg.DSN == "" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open(d.driverName, cfg.DataSourceName())
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	db.SetMaxIdleConns(0)

	s := &Store{
		db:      db,
		dialect: d,
		logger:  logger.With(zap.String("db", cfg.Redacted())),
	}

	if cfg.AutoMigrate {
		if err := s.migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks that a connection can be established.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func (s *Store) migrate(ctx context.Context) error {
	fail := func(err error) error { return &StorageError{Op: "migrate", Err: err} }

	for _, stmt := range s.dialect.bootstrap {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fail(err)
		}
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_meta (
            name VARCHAR(64) PRIMARY KEY,
            value VARCHAR(64) NOT NULL
        );`); err != nil {
		return fail(err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT value FROM schema_meta WHERE name = ?`), "schema_version").
		Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fail(err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer tx.Rollback()

	for _, stmt := range s.dialect.schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fail(fmt.Errorf("apply migration: %w", err))
		}
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM schema_meta WHERE name = ?`), "schema_version"); err != nil {
		return fail(err)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`INSERT INTO schema_meta (name, value) VALUES (?, ?)`),
		"schema_version", strconv.Itoa(schemaVersion)); err != nil {
		return fail(err)
	}
	if err := tx.Commit(); err != nil {
		return fail(err)
	}

	s.logger.Info("schema migrated", zap.Int("from", current), zap.Int("to", schemaVersion))
	return nil
}

// ---------------------------------------------------------------------------
// CRUD helpers
// ---------------------------------------------------------------------------

// exec runs one statement on a dedicated connection.
func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, &StorageError{Op: op, Err: err}
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return 0, &StorageError{Op: op, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: op, Err: err}
	}
	return n, nil
}

// Create inserts a new, available book and returns the id the database
// assigned to it.
func (s *Store) Create(ctx context.Context, title, author string) (int64, error) {
	const op = "add book"

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, &StorageError{Op: op, Err: err}
	}
	defer conn.Close()

	var id int64
	if s.dialect.returning {
		err = conn.QueryRowContext(ctx, s.dialect.rebind(insertBookSQL+" RETURNING id"), title, author, true).Scan(&id)
		if err != nil {
			return 0, &StorageError{Op: op, Err: err}
		}
	} else {
		res, err := conn.ExecContext(ctx, s.dialect.rebind(insertBookSQL), title, author, true)
		if err != nil {
			return 0, &StorageError{Op: op, Err: err}
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, &StorageError{Op: op, Err: err}
		}
	}

	s.logger.Debug("book inserted", zap.Int64("id", id))
	return id, nil
}

// List returns every row in whatever order the engine yields them. Columns
// are matched by name, so extra columns in the table are ignored.
func (s *Store) List(ctx context.Context) ([]Book, error) {
	const op = "list books"

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, selectBooksSQL)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	if err := requireColumns(cols, "id", "title", "author", "is_available"); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(scanTargets(cols, &b)...); err != nil {
			return nil, &StorageError{Op: op, Err: err}
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}

	s.logger.Debug("books listed", zap.Int("count", len(books)))
	return books, nil
}

func requireColumns(cols []string, want ...string) error {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[strings.ToLower(c)] = true
	}
	for _, w := range want {
		if !have[w] {
			return fmt.Errorf("column %q missing from books table", w)
		}
	}
	return nil
}

func scanTargets(cols []string, b *Book) []any {
	dest := make([]any, len(cols))
	for i, c := range cols {
		switch strings.ToLower(c) {
		case "id":
			dest[i] = &b.ID
		case "title":
			dest[i] = &b.Title
		case "author":
			dest[i] = &b.Author
		case "is_available":
			dest[i] = &b.Available
		default:
			dest[i] = new(any)
		}
	}
	return dest
}

// Update overwrites title, author and availability of the row with id. A
// missing id affects no rows and is not an error.
func (s *Store) Update(ctx context.Context, id int64, title, author string, available bool) error {
	n, err := s.exec(ctx, "update book", updateBookSQL, title, author, available, id)
	if err != nil {
		return err
	}
	s.logger.Debug("book updated", zap.Int64("id", id), zap.Int64("rows", n))
	return nil
}

// UpdateStatus flips only the availability flag. A missing id affects no
// rows and is not an error.
func (s *Store) UpdateStatus(ctx context.Context, id int64, available bool) error {
	n, err := s.exec(ctx, "update book status", updateBookStatusSQL, available, id)
	if err != nil {
		return err
	}
	s.logger.Debug("book status updated", zap.Int64("id", id), zap.Bool("available", available), zap.Int64("rows", n))
	return nil
}

// Delete removes the row with id, if there is one.
func (s *Store) Delete(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, "delete book", deleteBookSQL, id)
	if err != nil {
		return err
	}
	s.logger.Debug("book deleted", zap.Int64("id", id), zap.Int64("rows", n))
	return nil
}
