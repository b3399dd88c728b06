package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/internal/relationship"
)

// RelationshipStore is the production adapter of relationship.Store. The
// followers primary key and the connections pair_key unique index provide
// the atomic insert-if-absent the engine relies on.
type RelationshipStore struct {
	db *gorm.DB
}

// NewRelationshipStore creates a gorm-backed relationship store
func NewRelationshipStore(database *DB) *RelationshipStore {
	return &RelationshipStore{db: database.DB}
}

// storeErr maps a database failure onto the engine's error taxonomy while
// keeping the cause in the message.
func storeErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return relationship.ErrConflict
	}
	return fmt.Errorf("%w: %v", relationship.ErrStoreUnavailable, err)
}

// FindFollow retrieves the follow edge from userID to artistID, nil if absent
func (s *RelationshipStore) FindFollow(ctx context.Context, userID, artistID string) (*models.Follow, error) {
	var follow models.Follow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND artist_id = ?", userID, artistID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err)
	}
	return &follow, nil
}

// InsertFollow creates a follow edge; a duplicate pair maps to ErrConflict
func (s *RelationshipStore) InsertFollow(ctx context.Context, follow *models.Follow) error {
	if err := s.db.WithContext(ctx).Create(follow).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// DeleteFollow removes the follow edge; deleting a missing edge succeeds
func (s *RelationshipStore) DeleteFollow(ctx context.Context, userID, artistID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND artist_id = ?", userID, artistID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// CountFollowers returns the number of follow edges pointing at artistID
func (s *RelationshipStore) CountFollowers(ctx context.Context, artistID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("artist_id = ?", artistID).
		Count(&count).Error
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

// FindConnectionBetween locates the single edge for the unordered pair {a, b}
func (s *RelationshipStore) FindConnectionBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.WithContext(ctx).
		Where("pair_key = ?", models.PairKey(a, b)).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err)
	}
	return &conn, nil
}

// GetConnection retrieves a connection edge by id
func (s *RelationshipStore) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, relationship.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &conn, nil
}

// InsertConnection creates a pending edge; a second edge for the same pair
// is rejected by the pair_key unique index regardless of direction.
func (s *RelationshipStore) InsertConnection(ctx context.Context, conn *models.Connection) error {
	if err := s.db.WithContext(ctx).Create(conn).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// UpdateConnectionStatus transitions an edge's status
func (s *RelationshipStore) UpdateConnectionStatus(ctx context.Context, id string, status models.ConnectionStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return relationship.ErrNotFound
	}
	return nil
}

// DeleteConnection removes an edge by id
func (s *RelationshipStore) DeleteConnection(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Connection{}).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// ListConnectionsFor returns every edge the profile is a party to, newest
// first, with both party profiles preloaded for the connection view.
func (s *RelationshipStore) ListConnectionsFor(ctx context.Context, profileID string) ([]*models.Connection, error) {
	var conns []*models.Connection
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Friend").
		Where("user_id = ? OR friend_id = ?", profileID, profileID).
		Order("created_at DESC").
		Find(&conns).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return conns, nil
}
