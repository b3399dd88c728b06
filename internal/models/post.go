package models

import (
	"time"
)

// ArtistPost represents an update posted by an artist for their followers
type ArtistPost struct {
	ID        string    `gorm:"type:uuid;primaryKey;column:id"`
	ArtistID  string    `gorm:"type:uuid;not null;index;column:artist_id"`
	Content   string    `gorm:"type:text;not null;column:content"`
	ImageURL  string    `gorm:"type:varchar(1024);not null;default:'';column:image_url"`
	CreatedAt time.Time `gorm:"not null;index;column:created_at"`

	// Relationships
	Artist *Profile `gorm:"foreignKey:ArtistID;references:ID"`
}

// TableName specifies the table name for ArtistPost
func (ArtistPost) TableName() string {
	return "artist_posts"
}

// PostLike records a user liking an artist post
type PostLike struct {
	ID        string    `gorm:"type:uuid;primaryKey;column:id"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:post_likes_ux;column:post_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:post_likes_ux;column:user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for PostLike
func (PostLike) TableName() string {
	return "post_likes"
}
