package models

import (
	"database/sql"
	"time"
)

// UserType distinguishes the three account kinds
type UserType string

const (
	UserTypeFan    UserType = "fan"
	UserTypeArtist UserType = "artist"
	UserTypeVenue  UserType = "venue"
)

// Level is the gamification tier derived from XP
type Level string

const (
	LevelNewbie     Level = "newbie"
	LevelExplorer   Level = "explorer"
	LevelConnector  Level = "connector"
	LevelInfluencer Level = "influencer"
	LevelLegend     Level = "legend"
)

// XP thresholds for each level
const (
	xpExplorer   = 100
	xpConnector  = 500
	xpInfluencer = 1500
	xpLegend     = 5000
)

// LevelForXP returns the level a profile with the given XP belongs to
func LevelForXP(xp int64) Level {
	switch {
	case xp >= xpLegend:
		return LevelLegend
	case xp >= xpInfluencer:
		return LevelInfluencer
	case xp >= xpConnector:
		return LevelConnector
	case xp >= xpExplorer:
		return LevelExplorer
	default:
		return LevelNewbie
	}
}

// XP awards for social actions
const (
	XPForRSVP        int64 = 10
	XPForHiveCreated int64 = 25
	XPForPostLike    int64 = 5
)

// Profile represents a user account
type Profile struct {
	ID        string   `gorm:"type:uuid;primaryKey;column:id"`
	Name      string   `gorm:"type:varchar(100);not null;column:name"`
	UserType  UserType `gorm:"type:varchar(16);not null;default:'fan';column:user_type"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Profile fields
	Bio       sql.NullString `gorm:"type:varchar(500);column:bio"`
	Location  sql.NullString `gorm:"type:varchar(100);column:location"`
	AvatarURL string         `gorm:"type:varchar(1024);not null;default:'';column:avatar_url"`
	Interests []string       `gorm:"serializer:json;column:interests"`

	// Artist-specific fields
	ArtistBio sql.NullString `gorm:"type:varchar(1000);column:artist_bio"`
	Genres    []string       `gorm:"serializer:json;column:genres"`

	// Gamification
	XP    int64 `gorm:"not null;default:0;column:xp"`
	Level Level `gorm:"type:varchar(16);not null;default:'newbie';column:level"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
