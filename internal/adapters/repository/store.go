// Package repository persists emitted events and the daily request counter.
package repository

import (
	"context"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/quota"
)

// Store is the persistence surface used by the service. Implementations must
// be safe for concurrent use.
type Store interface {
	// SaveEvents inserts events, skipping any whose id already exists.
	SaveEvents(ctx context.Context, events []model.GoalEvent) error

	// RecentEvents returns up to limit stored events, newest first.
	RecentEvents(ctx context.Context, limit int) ([]model.GoalEvent, error)

	// ExistingIDs reports which of the given ids are already stored.
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)

	// LoadQuota returns the stored request counter and whether one existed.
	LoadQuota(ctx context.Context) (quota.State, bool, error)

	// SaveQuota writes the request counter back.
	SaveQuota(ctx context.Context, state quota.State) error

	// Close releases the underlying resources.
	Close() error
}
