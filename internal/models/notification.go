package models

import (
	"time"
)

// NotificationPreferences holds a user's notification toggles
type NotificationPreferences struct {
	UserID    string    `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`

	EmailNewFollower       bool `gorm:"not null;default:true;column:email_new_follower" json:"email_new_follower"`
	EmailConnectionRequest bool `gorm:"not null;default:true;column:email_connection_request" json:"email_connection_request"`
	EmailHiveReminder      bool `gorm:"not null;default:true;column:email_hive_reminder" json:"email_hive_reminder"`
	EmailArtistPost        bool `gorm:"not null;default:false;column:email_artist_post" json:"email_artist_post"`
	PushNewFollower        bool `gorm:"not null;default:true;column:push_new_follower" json:"push_new_follower"`
	PushConnectionRequest  bool `gorm:"not null;default:true;column:push_connection_request" json:"push_connection_request"`
	PushHiveReminder       bool `gorm:"not null;default:true;column:push_hive_reminder" json:"push_hive_reminder"`
	PushArtistPost         bool `gorm:"not null;default:true;column:push_artist_post" json:"push_artist_post"`
}

// TableName specifies the table name for NotificationPreferences
func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

// DefaultNotificationPreferences returns the defaults for a user who has
// never saved preferences
func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	now := time.Now().UTC()
	return &NotificationPreferences{
		UserID:                 userID,
		CreatedAt:              now,
		UpdatedAt:              now,
		EmailNewFollower:       true,
		EmailConnectionRequest: true,
		EmailHiveReminder:      true,
		EmailArtistPost:        false,
		PushNewFollower:        true,
		PushConnectionRequest:  true,
		PushHiveReminder:       true,
		PushArtistPost:         true,
	}
}
