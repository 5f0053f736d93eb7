package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

// Store persists optimization records. Lookups return nil, nil when nothing matches.
type Store interface {
	Create(ctx context.Context, o *types.Optimization) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Optimization, error)
	FindByKey(ctx context.Context, key types.Key) (*types.Optimization, error)
	// ClaimByKey atomically moves the newest record matching key from one status to another
	ClaimByKey(ctx context.Context, key types.Key, from, to types.Status) (*types.Optimization, error)
	Update(ctx context.Context, o *types.Optimization) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]types.Optimization, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
