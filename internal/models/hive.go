package models

import (
	"database/sql"
	"time"
)

// HiveCategory classifies an event
type HiveCategory string

const (
	CategorySocial   HiveCategory = "social"
	CategorySports   HiveCategory = "sports"
	CategoryArts     HiveCategory = "arts"
	CategoryFood     HiveCategory = "food"
	CategoryMusic    HiveCategory = "music"
	CategoryGaming   HiveCategory = "gaming"
	CategoryStudy    HiveCategory = "study"
	CategoryOutdoors HiveCategory = "outdoors"
	CategoryOther    HiveCategory = "other"
)

// ValidCategory reports whether s names a known hive category
func ValidCategory(s string) bool {
	switch HiveCategory(s) {
	case CategorySocial, CategorySports, CategoryArts, CategoryFood,
		CategoryMusic, CategoryGaming, CategoryStudy, CategoryOutdoors, CategoryOther:
		return true
	}
	return false
}

// Hive represents a user-created local event
type Hive struct {
	ID          string       `gorm:"type:uuid;primaryKey;column:id"`
	HostID      string       `gorm:"type:uuid;not null;index;column:host_id"`
	Title       string       `gorm:"type:varchar(200);not null;column:title"`
	Description sql.NullString `gorm:"type:text;column:description"`
	Category    HiveCategory `gorm:"type:varchar(16);not null;column:category"`
	Location    string       `gorm:"type:varchar(200);not null;column:location"`
	EventDate   time.Time    `gorm:"type:date;not null;index;column:event_date"`
	EventTime   string       `gorm:"type:varchar(8);not null;column:event_time"`
	MaxAttendees  int64        `gorm:"not null;default:0;column:max_attendees"`
	CoverImageURL string       `gorm:"type:varchar(1024);not null;default:'';column:cover_image_url"`
	CreatedAt   time.Time    `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time    `gorm:"not null;column:updated_at"`

	// Relationships
	Host *Profile `gorm:"foreignKey:HostID;references:ID"`
}

// TableName specifies the table name for Hive
func (Hive) TableName() string {
	return "hives"
}

// RSVP represents a user's recorded intent to attend a hive
type RSVP struct {
	ID        string    `gorm:"type:uuid;primaryKey;column:id"`
	HiveID    string    `gorm:"type:uuid;not null;uniqueIndex:hive_rsvps_ux;column:hive_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:hive_rsvps_ux;index;column:user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Hive *Hive    `gorm:"foreignKey:HiveID;references:ID"`
	User *Profile `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for RSVP
func (RSVP) TableName() string {
	return "hive_rsvps"
}
