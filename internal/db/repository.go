package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hiverapp/hiver/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProfileRepository provides profile-related database operations
type ProfileRepository struct {
	*Repository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(repo *Repository) *ProfileRepository {
	return &ProfileRepository{Repository: repo}
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// List retrieves all public profiles
func (r *ProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Update updates a profile
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// AwardXP atomically adds XP to a profile and recomputes its level
func (r *ProfileRepository) AwardXP(ctx context.Context, id string, amount int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).
			Where("id = ?", id).
			Update("xp", gorm.Expr("xp + ?", amount)).Error; err != nil {
			return err
		}
		var profile models.Profile
		if err := tx.Select("id", "xp").Where("id = ?", id).First(&profile).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).
			Where("id = ?", id).
			Update("level", models.LevelForXP(profile.XP)).Error
	})
}

// HiveRepository provides hive-related database operations
type HiveRepository struct {
	*Repository
}

// NewHiveRepository creates a new hive repository
func NewHiveRepository(repo *Repository) *HiveRepository {
	return &HiveRepository{Repository: repo}
}

// GetByID retrieves a hive by ID
func (r *HiveRepository) GetByID(ctx context.Context, id string) (*models.Hive, error) {
	var hive models.Hive
	if err := r.db.WithContext(ctx).Preload("Host").Where("id = ?", id).First(&hive).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hive, nil
}

// Create creates a new hive
func (r *HiveRepository) Create(ctx context.Context, hive *models.Hive) error {
	return r.db.WithContext(ctx).Create(hive).Error
}

// ListUpcoming retrieves upcoming hives ordered by event date
func (r *HiveRepository) ListUpcoming(ctx context.Context, limit int) ([]*models.Hive, error) {
	var hives []*models.Hive
	err := r.db.WithContext(ctx).
		Where("event_date >= ?", today()).
		Order("event_date ASC").
		Limit(limit).
		Find(&hives).Error
	if err != nil {
		return nil, err
	}
	return hives, nil
}

// ListByHost retrieves hives hosted by a profile, newest event first
func (r *HiveRepository) ListByHost(ctx context.Context, hostID string) ([]*models.Hive, error) {
	var hives []*models.Hive
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("event_date DESC").
		Find(&hives).Error
	if err != nil {
		return nil, err
	}
	return hives, nil
}

// HiveWithCount pairs a hive with its attendance count
type HiveWithCount struct {
	models.Hive
	RSVPCount int64 `gorm:"column:rsvp_count"`
}

// ListUpcomingWithCounts retrieves upcoming hives joined with their RSVP
// counts, the input for the trending ranker.
func (r *HiveRepository) ListUpcomingWithCounts(ctx context.Context, limit int) ([]*HiveWithCount, error) {
	var rows []*HiveWithCount
	err := r.db.WithContext(ctx).
		Model(&models.Hive{}).
		Select("hives.*, COUNT(hive_rsvps.id) AS rsvp_count").
		Joins("LEFT JOIN hive_rsvps ON hive_rsvps.hive_id = hives.id").
		Where("hives.event_date >= ?", today()).
		Group("hives.id").
		Order("hives.event_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RSVPRepository provides RSVP-related database operations
type RSVPRepository struct {
	*Repository
}

// NewRSVPRepository creates a new RSVP repository
func NewRSVPRepository(repo *Repository) *RSVPRepository {
	return &RSVPRepository{Repository: repo}
}

// Create creates an RSVP; a duplicate (hive, user) pair maps to
// gorm.ErrDuplicatedKey via the unique index.
func (r *RSVPRepository) Create(ctx context.Context, rsvp *models.RSVP) error {
	return r.db.WithContext(ctx).Create(rsvp).Error
}

// Delete removes a user's RSVP for a hive; missing rows are not an error
func (r *RSVPRepository) Delete(ctx context.Context, hiveID, userID string) error {
	return r.db.WithContext(ctx).
		Where("hive_id = ? AND user_id = ?", hiveID, userID).
		Delete(&models.RSVP{}).Error
}

// CountForHive returns the attendance count for a hive
func (r *RSVPRepository) CountForHive(ctx context.Context, hiveID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RSVP{}).
		Where("hive_id = ?", hiveID).
		Count(&count).Error
	return count, err
}

// Exists reports whether the user has RSVPed to the hive
func (r *RSVPRepository) Exists(ctx context.Context, hiveID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RSVP{}).
		Where("hive_id = ? AND user_id = ?", hiveID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListRecentForUser retrieves a user's most recent RSVPs with their hives,
// used to build the recommendation prompt.
func (r *RSVPRepository) ListRecentForUser(ctx context.Context, userID string, limit int) ([]*models.RSVP, error) {
	var rsvps []*models.RSVP
	err := r.db.WithContext(ctx).
		Preload("Hive").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rsvps).Error
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

// PostRepository provides artist-post database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// Create creates a new artist post
func (r *PostRepository) Create(ctx context.Context, post *models.ArtistPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.ArtistPost, error) {
	var post models.ArtistPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ListFeed retrieves posts by artists the user follows, newest first
func (r *PostRepository) ListFeed(ctx context.Context, userID string, limit int) ([]*models.ArtistPost, error) {
	var posts []*models.ArtistPost
	err := r.db.WithContext(ctx).
		Preload("Artist").
		Joins("JOIN followers ON followers.artist_id = artist_posts.artist_id").
		Where("followers.user_id = ?", userID).
		Order("artist_posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// InsertLike records a like; duplicates map to gorm.ErrDuplicatedKey
func (r *PostRepository) InsertLike(ctx context.Context, like *models.PostLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike removes a like; missing rows are not an error
func (r *PostRepository) DeleteLike(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
}

// CountLikes returns the like count for a post
func (r *PostRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PostLike{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// NotificationRepository provides notification-preference operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Get retrieves a user's preferences, nil when never saved
func (r *NotificationRepository) Get(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

// Upsert saves a user's preferences, creating the row on first save
func (r *NotificationRepository) Upsert(ctx context.Context, prefs *models.NotificationPreferences) error {
	prefs.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(prefs).Error
}

// today truncates now to a date for event_date comparisons
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
