// Package storage persists news records in PostgreSQL or SQLite through sqlx.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/bilgisen/khabar/internal/models"
)

const columns = `id, title, description, content, link, pub_date, category, image, publisher, tag, summary, is_summarized, created_at, updated_at`

// Store reads and writes news records.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database of the given driver ("postgres" or
// "sqlite") and creates the schema when missing.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// A single connection keeps ":memory:" databases shared and avoids
		// SQLITE_BUSY between concurrent writers.
		db.SetMaxOpenConns(1)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the news table and its indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// ListFilter selects records for List and Count.
type ListFilter struct {
	Tags       []string
	Summarized *bool
	Limit      int
	Offset     int
}

func (f ListFilter) where() (string, []interface{}, error) {
	var (
		conds []string
		args  []interface{}
	)
	if len(f.Tags) > 0 {
		query, inArgs, err := sqlx.In("tag IN (?)", f.Tags)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, query)
		args = append(args, inArgs...)
	}
	if f.Summarized != nil {
		conds = append(conds, "is_summarized = ?")
		args = append(args, *f.Summarized)
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.PersistedNews, error) {
	where, args, err := f.where()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	query := "SELECT " + columns + " FROM news" + where + " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows := []models.PersistedNews{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return rows, nil
}

// Count returns the number of matching records. Limit and offset are
// ignored.
func (s *Store) Count(ctx context.Context, f ListFilter) (int, error) {
	where, args, err := f.where()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind("SELECT COUNT(*) FROM news"+where), args...); err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return n, nil
}

// Get returns the record with id. When tags are given the record must carry
// one of them.
func (s *Store) Get(ctx context.Context, id int64, tags ...string) (*models.PersistedNews, error) {
	query, args, err := scopedByID("SELECT "+columns+" FROM news", id, tags)
	if err != nil {
		return nil, err
	}

	var rec models.PersistedNews
	if err := s.db.GetContext(ctx, &rec, s.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get news %d: %w", id, err)
	}
	return &rec, nil
}

// Delete removes the record with id, scoped to tags when given.
func (s *Store) Delete(ctx context.Context, id int64, tags ...string) error {
	query, args, err := scopedByID("DELETE FROM news", id, tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// LatestCreated returns the newest created_at of tag, or nil when the tag
// has no records.
func (s *Store) LatestCreated(ctx context.Context, tag string) (*time.Time, error) {
	var ts time.Time
	query := s.db.Rebind("SELECT created_at FROM news WHERE tag = ? ORDER BY created_at DESC, id DESC LIMIT 1")
	if err := s.db.GetContext(ctx, &ts, query, tag); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest news of %s: %w", tag, err)
	}
	return &ts, nil
}

// UpdateSummary stores summary on record id and marks it summarized.
func (s *Store) UpdateSummary(ctx context.Context, id int64, summary string, at time.Time) error {
	query := s.db.Rebind("UPDATE news SET summary = ?, is_summarized = ?, updated_at = ? WHERE id = ?")
	res, err := s.db.ExecContext(ctx, query, summary, true, at, id)
	if err != nil {
		return &PersistenceError{Op: "update summary", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// BeginBatch opens a transaction for the dedup gate.
func (s *Store) BeginBatch(ctx context.Context) (Batch, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlBatch{tx: tx}, nil
}

func scopedByID(base string, id int64, tags []string) (string, []interface{}, error) {
	if len(tags) == 0 {
		return base + " WHERE id = ?", []interface{}{id}, nil
	}
	query, args, err := sqlx.In(base+" WHERE id = ? AND tag IN (?)", id, tags)
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return query, args, nil
}

type sqlBatch struct {
	tx *sqlx.Tx
}

func (b *sqlBatch) Exists(ctx context.Context, title, link, tag string) (bool, error) {
	var n int
	query := b.tx.Rebind("SELECT COUNT(*) FROM news WHERE title = ? AND link = ? AND tag = ?")
	if err := b.tx.GetContext(ctx, &n, query, title, link, tag); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *sqlBatch) Insert(ctx context.Context, rec *models.PersistedNews) (int64, error) {
	query := b.tx.Rebind(`
INSERT INTO news (title, description, content, link, pub_date, category, image, publisher, tag, summary, is_summarized, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`)

	var id int64
	err := b.tx.QueryRowxContext(ctx, query,
		rec.Title,
		rec.Description,
		rec.Content,
		rec.Link,
		rec.PubDate,
		rec.Category,
		rec.Image,
		rec.Publisher,
		rec.Tag,
		rec.Summary,
		rec.IsSummarized,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (b *sqlBatch) Commit() error {
	return b.tx.Commit()
}

func (b *sqlBatch) Rollback() error {
	return b.tx.Rollback()
}
