package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hiverapp/hiver/internal/db"
	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/internal/security"
)

// FeedAPI exposes artist-post and feed methods
type FeedAPI struct {
	posts    *db.PostRepository
	profiles *db.ProfileRepository
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(posts *db.PostRepository, profiles *db.ProfileRepository) *FeedAPI {
	return &FeedAPI{posts: posts, profiles: profiles}
}

// CreatePost handles hiver_api.create_post
func (a *FeedAPI) CreatePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	content := security.SanitizeText(p.Content)
	if content == "" {
		return nil, NewError(ErrInvalidParams, "missing required parameter: content")
	}

	ctx := c.Request.Context()
	profile, err := a.profiles.GetByID(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.UserType != models.UserTypeArtist {
		return nil, NewError(ErrForbidden, "only artists can post")
	}

	post := &models.ArtistPost{
		ID:        uuid.NewString(),
		ArtistID:  viewer,
		Content:   content,
		ImageURL:  p.ImageURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return postView(post, 0), nil
}

// GetFeed handles hiver_api.get_feed
func (a *FeedAPI) GetFeed(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		Limit int `json:"limit"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewError(ErrInvalidParams, "invalid parameters format")
		}
	}

	ctx := c.Request.Context()
	posts, err := a.posts.ListFeed(ctx, viewer, clampLimit(p.Limit))
	if err != nil {
		return nil, err
	}
	views := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		likes, err := a.posts.CountLikes(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, postView(post, likes))
	}
	return views, nil
}

// LikePost handles hiver_api.like_post
func (a *FeedAPI) LikePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		PostID string `json:"post_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	post, err := a.posts.GetByID(ctx, p.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NewError(ErrNotFound, "post not found")
	}

	like := &models.PostLike{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		UserID:    viewer,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.posts.InsertLike(ctx, like); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return gin.H{"liked": true}, nil
		}
		return nil, err
	}
	if err := a.profiles.AwardXP(ctx, viewer, models.XPForPostLike); err != nil {
		logAwardFailure(viewer, err)
	}
	return gin.H{"liked": true}, nil
}

// UnlikePost handles hiver_api.unlike_post
func (a *FeedAPI) UnlikePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		PostID string `json:"post_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := a.posts.DeleteLike(c.Request.Context(), p.PostID, viewer); err != nil {
		return nil, err
	}
	return gin.H{"liked": false}, nil
}

// postView shapes an artist post for the response
func postView(post *models.ArtistPost, likeCount int64) gin.H {
	view := gin.H{
		"id":         post.ID,
		"artist_id":  post.ArtistID,
		"content":    post.Content,
		"image_url":  post.ImageURL,
		"like_count": likeCount,
		"created_at": post.CreatedAt,
	}
	if post.Artist != nil {
		view["artist"] = gin.H{
			"id":         post.Artist.ID,
			"name":       post.Artist.Name,
			"avatar_url": post.Artist.AvatarURL,
		}
	}
	return view
}
