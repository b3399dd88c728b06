package relationship

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/pkg/logging"
)

// Engine implements the relationship rules: directed follows, the mutual
// connection lifecycle, and the derived read models. All operations take the
// viewer identity explicitly; nothing is read from ambient state.
type Engine struct {
	store  Store
	logger *zap.Logger
}

// NewEngine creates a relationship engine backed by the given store
func NewEngine(store Store) *Engine {
	return &Engine{
		store:  store,
		logger: logging.GetLogger().With(zap.String("component", "relationship-engine")),
	}
}

// FollowStatus reports whether viewer follows artist. An absent viewer is
// not an error; it simply does not follow anyone.
func (e *Engine) FollowStatus(ctx context.Context, viewer, artist string) (bool, error) {
	if viewer == "" {
		return false, nil
	}
	follow, err := e.store.FindFollow(ctx, viewer, artist)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}

// Follow creates a follow edge from viewer to artist. Following twice is a
// no-op; the store's primary key guarantees a single edge per pair.
func (e *Engine) Follow(ctx context.Context, viewer, artist string) error {
	if viewer == "" {
		return ErrUnauthenticated
	}
	if viewer == artist {
		return ErrSelfReference
	}
	err := e.store.InsertFollow(ctx, &models.Follow{
		UserID:    viewer,
		ArtistID:  artist,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, ErrConflict) {
		// already following
		return nil
	}
	if err != nil {
		return err
	}
	e.logger.Debug("follow created",
		zap.String("user_id", viewer),
		zap.String("artist_id", artist))
	return nil
}

// Unfollow removes the follow edge from viewer to artist. Removing a
// missing edge succeeds.
func (e *Engine) Unfollow(ctx context.Context, viewer, artist string) error {
	if viewer == "" {
		return ErrUnauthenticated
	}
	return e.store.DeleteFollow(ctx, viewer, artist)
}

// FollowerCount returns the number of profiles following artist
func (e *Engine) FollowerCount(ctx context.Context, artist string) (int64, error) {
	return e.store.CountFollowers(ctx, artist)
}

// ConnectionStatus computes the viewer's relationship state with subject
func (e *Engine) ConnectionStatus(ctx context.Context, viewer, subject string) (Status, error) {
	if viewer == "" || viewer == subject {
		return StatusNone, nil
	}
	conn, err := e.store.FindConnectionBetween(ctx, viewer, subject)
	if err != nil {
		return StatusNone, err
	}
	if conn == nil {
		return StatusNone, nil
	}
	switch conn.Status {
	case models.ConnectionAccepted:
		return StatusConnected, nil
	case models.ConnectionPending:
		if conn.UserID == viewer {
			return StatusPendingSent, nil
		}
		return StatusPendingReceived, nil
	default:
		return StatusNone, nil
	}
}

// RequestConnection creates a pending edge from viewer to subject. Any
// existing edge between the pair, in either direction, is a conflict; the
// store's pair-key uniqueness makes the check-then-insert race-safe.
func (e *Engine) RequestConnection(ctx context.Context, viewer, subject string) (*models.Connection, error) {
	if viewer == "" {
		return nil, ErrUnauthenticated
	}
	if viewer == subject {
		return nil, ErrSelfReference
	}
	existing, err := e.store.FindConnectionBetween(ctx, viewer, subject)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}
	conn := models.NewConnection(viewer, subject)
	if err := e.store.InsertConnection(ctx, conn); err != nil {
		return nil, err
	}
	e.logger.Debug("connection requested",
		zap.String("connection_id", conn.ID),
		zap.String("initiator", viewer),
		zap.String("recipient", subject))
	return conn, nil
}

// AcceptConnection transitions a pending edge to accepted. Only the
// recipient of a pending request may accept it.
func (e *Engine) AcceptConnection(ctx context.Context, connectionID, viewer string) error {
	if viewer == "" {
		return ErrUnauthenticated
	}
	conn, err := e.store.GetConnection(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn.FriendID != viewer || conn.Status != models.ConnectionPending {
		return ErrForbidden
	}
	if err := e.store.UpdateConnectionStatus(ctx, connectionID, models.ConnectionAccepted); err != nil {
		return err
	}
	e.logger.Debug("connection accepted", zap.String("connection_id", connectionID))
	return nil
}

// RejectConnection deletes a pending edge; only the recipient may reject
func (e *Engine) RejectConnection(ctx context.Context, connectionID, viewer string) error {
	return e.terminate(ctx, connectionID, viewer, models.ConnectionPending, func(c *models.Connection) bool {
		return c.FriendID == viewer
	})
}

// CancelConnection deletes a pending edge; only the initiator may cancel
func (e *Engine) CancelConnection(ctx context.Context, connectionID, viewer string) error {
	return e.terminate(ctx, connectionID, viewer, models.ConnectionPending, func(c *models.Connection) bool {
		return c.UserID == viewer
	})
}

// RemoveConnection deletes an accepted edge; either party may remove
func (e *Engine) RemoveConnection(ctx context.Context, connectionID, viewer string) error {
	return e.terminate(ctx, connectionID, viewer, models.ConnectionAccepted, func(c *models.Connection) bool {
		return c.Involves(viewer)
	})
}

// terminate is the shared delete path for reject, cancel and remove. The
// edge must be in the expected status and the viewer must pass the role
// check for the action. Rejected edges are not retained; deleting the row
// clears the pair for an immediate new request.
func (e *Engine) terminate(ctx context.Context, connectionID, viewer string, expect models.ConnectionStatus, allowed func(*models.Connection) bool) error {
	if viewer == "" {
		return ErrUnauthenticated
	}
	conn, err := e.store.GetConnection(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn.Status != expect || !allowed(conn) {
		return ErrForbidden
	}
	if err := e.store.DeleteConnection(ctx, connectionID); err != nil {
		return err
	}
	e.logger.Debug("connection terminated",
		zap.String("connection_id", connectionID),
		zap.String("status", string(expect)))
	return nil
}

// Connections returns the viewer's edges partitioned for the three-tab view
func (e *Engine) Connections(ctx context.Context, viewer string) (*ConnectionList, error) {
	if viewer == "" {
		return nil, ErrUnauthenticated
	}
	edges, err := e.store.ListConnectionsFor(ctx, viewer)
	if err != nil {
		return nil, err
	}
	list := &ConnectionList{}
	for _, conn := range edges {
		switch conn.Status {
		case models.ConnectionAccepted:
			list.Connected = append(list.Connected, conn)
		case models.ConnectionPending:
			if conn.FriendID == viewer {
				list.Requests = append(list.Requests, conn)
			} else {
				list.Sent = append(list.Sent, conn)
			}
		}
	}
	return list, nil
}
