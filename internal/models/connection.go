package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus is the lifecycle state of a connection edge
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	// ConnectionRejected exists for schema compatibility; rejection deletes
	// the row instead of persisting this status.
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection represents a peer connection between two profiles.
// UserID is the initiator and FriendID the recipient; connectedness itself
// is undirected. PairKey normalizes the pair so a unique index can guarantee
// at most one edge per pair regardless of direction.
type Connection struct {
	ID        string           `gorm:"type:uuid;primaryKey;column:id"`
	UserID    string           `gorm:"type:uuid;not null;index;column:user_id"`
	FriendID  string           `gorm:"type:uuid;not null;index;column:friend_id"`
	PairKey   string           `gorm:"type:varchar(80);not null;uniqueIndex:connections_pair_ux;column:pair_key"`
	Status    ConnectionStatus `gorm:"type:varchar(16);not null;default:'pending';column:status"`
	CreatedAt time.Time        `gorm:"not null;column:created_at"`
	UpdatedAt time.Time        `gorm:"not null;column:updated_at"`

	// Relationships
	User   *Profile `gorm:"foreignKey:UserID;references:ID"`
	Friend *Profile `gorm:"foreignKey:FriendID;references:ID"`
}

// TableName specifies the table name for Connection
func (Connection) TableName() string {
	return "connections"
}

// PairKey returns the normalized key for an unordered profile pair
func PairKey(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}

// NewConnection builds a pending connection from initiator to recipient
func NewConnection(initiator, recipient string) *Connection {
	now := time.Now().UTC()
	return &Connection{
		ID:        uuid.NewString(),
		UserID:    initiator,
		FriendID:  recipient,
		PairKey:   PairKey(initiator, recipient),
		Status:    ConnectionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Involves reports whether the given profile is a party to this edge
func (c *Connection) Involves(profileID string) bool {
	return c.UserID == profileID || c.FriendID == profileID
}

// OtherParty returns the counterpart of the given profile on this edge
func (c *Connection) OtherParty(profileID string) string {
	if c.UserID == profileID {
		return c.FriendID
	}
	return c.UserID
}
