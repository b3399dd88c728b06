package relationship

import (
	"context"

	"github.com/hiverapp/hiver/internal/models"
)

// Store is the persistence port the engine depends on. The production
// adapter lives in internal/db; tests use an in-memory fake.
//
// InsertFollow and InsertConnection must be atomic with respect to their
// uniqueness guarantees: two racing inserts for the same pair must not both
// succeed, the loser observing ErrConflict.
type Store interface {
	FindFollow(ctx context.Context, userID, artistID string) (*models.Follow, error)
	InsertFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, userID, artistID string) error
	CountFollowers(ctx context.Context, artistID string) (int64, error)

	// FindConnectionBetween locates the edge for the unordered pair {a, b},
	// returning nil when none exists.
	FindConnectionBetween(ctx context.Context, a, b string) (*models.Connection, error)
	GetConnection(ctx context.Context, id string) (*models.Connection, error)
	InsertConnection(ctx context.Context, conn *models.Connection) error
	UpdateConnectionStatus(ctx context.Context, id string, status models.ConnectionStatus) error
	DeleteConnection(ctx context.Context, id string) error
	ListConnectionsFor(ctx context.Context, profileID string) ([]*models.Connection, error)
}

// ConnectionList partitions a viewer's edges for the three-tab connection view
type ConnectionList struct {
	// Connected holds accepted edges, either direction
	Connected []*models.Connection
	// Requests holds incoming pending edges awaiting the viewer
	Requests []*models.Connection
	// Sent holds outgoing pending edges the viewer initiated
	Sent []*models.Connection
}
