package models

import (
	"time"
)

// Follow represents a directed fan-to-artist subscription.
// Existence of a row implies an active follow; there is no status field.
type Follow struct {
	UserID    string    `gorm:"type:uuid;primaryKey;column:user_id"`
	ArtistID  string    `gorm:"type:uuid;primaryKey;column:artist_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User   *Profile `gorm:"foreignKey:UserID;references:ID"`
	Artist *Profile `gorm:"foreignKey:ArtistID;references:ID"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "followers"
}
