package storage

import (
	"context"
	"time"

	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
)

// Batch is one all-or-nothing unit of gate writes.
type Batch interface {
	Exists(ctx context.Context, title, link, tag string) (bool, error)
	Insert(ctx context.Context, rec *models.PersistedNews) (int64, error)
	Commit() error
	Rollback() error
}

// BatchBeginner opens batches. *Store implements it.
type BatchBeginner interface {
	BeginBatch(ctx context.Context) (Batch, error)
}

// Gate stores only items whose (title, link, tag) is not yet persisted.
//
// Two gates saving the same item concurrently can both pass the existence
// check; there is no unique constraint behind it.
type Gate struct {
	db  BatchBeginner
	now func() time.Time
}

// NewGate creates a gate writing through db. A nil clock uses time.Now.
func NewGate(db BatchBeginner, clock func() time.Time) *Gate {
	if clock == nil {
		clock = time.Now
	}
	return &Gate{db: db, now: clock}
}

// SaveNew persists the new items of the batch under tag and returns them
// with their assigned ids. Duplicates, including repeats within items, are
// skipped. On any failure nothing is stored and a *PersistenceError is
// returned.
func (g *Gate) SaveNew(ctx context.Context, items []models.NewsItem, tag string) ([]models.PersistedNews, error) {
	log := logger.Component("storage")
	if len(items) == 0 {
		return []models.PersistedNews{}, nil
	}

	batch, err := g.db.BeginBatch(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "begin", Err: err}
	}

	saved := make([]models.PersistedNews, 0, len(items))
	seen := make(map[[2]string]struct{}, len(items))
	now := g.now()

	for _, item := range items {
		key := [2]string{item.Title, item.Link}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		exists, err := batch.Exists(ctx, item.Title, item.Link, tag)
		if err != nil {
			batch.Rollback()
			return nil, &PersistenceError{Op: "check existing", Err: err}
		}
		if exists {
			continue
		}

		rec := models.NewPersistedNews(item, tag, now)
		id, err := batch.Insert(ctx, rec)
		if err != nil {
			batch.Rollback()
			log.Error().Err(err).Str("tag", tag).Str("link", item.Link).Msg("Insert failed, batch rolled back")
			return nil, &PersistenceError{Op: "insert", Err: err}
		}
		rec.ID = id
		saved = append(saved, *rec)
	}

	if err := batch.Commit(); err != nil {
		batch.Rollback()
		return nil, &PersistenceError{Op: "commit", Err: err}
	}

	log.Info().
		Str("tag", tag).
		Int("received", len(items)).
		Int("saved", len(saved)).
		Msg("Saved new news records")
	return saved, nil
}
