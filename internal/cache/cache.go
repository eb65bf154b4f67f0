// Package cache holds aggregated news lists keyed by selector for a fixed
// time-to-live.
package cache

import (
	"context"
	"time"

	"github.com/bilgisen/khabar/internal/models"
)

// Store caches news lists by key. Entries are replaced wholesale on Put and
// expire a fixed TTL after they were written.
type Store interface {
	Get(ctx context.Context, key string) ([]models.NewsItem, bool)
	Put(ctx context.Context, key string, items []models.NewsItem)
	Delete(ctx context.Context, key string)
}

// Clock returns the current time.
type Clock func() time.Time
