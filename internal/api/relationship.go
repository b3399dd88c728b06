package api

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/hiverapp/hiver/internal/auth"
	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/internal/relationship"
)

// RelationshipAPI exposes the follow and connection methods
type RelationshipAPI struct {
	engine *relationship.Engine
}

// NewRelationshipAPI creates a new relationship API
func NewRelationshipAPI(engine *relationship.Engine) *RelationshipAPI {
	return &RelationshipAPI{engine: engine}
}

// requireViewer returns the authenticated profile id or an
// unauthenticated error for anonymous requests.
func requireViewer(c *gin.Context) (string, error) {
	viewer := auth.Viewer(c)
	if viewer == "" {
		return "", relationship.ErrUnauthenticated
	}
	return viewer, nil
}

type artistParams struct {
	ArtistID string `json:"artist_id"`
}

type connectionParams struct {
	ConnectionID string `json:"connection_id"`
}

// Follow handles hiver_api.follow
func (a *RelationshipAPI) Follow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p artistParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := a.engine.Follow(c.Request.Context(), viewer, p.ArtistID); err != nil {
		return nil, err
	}
	return gin.H{"following": true}, nil
}

// Unfollow handles hiver_api.unfollow
func (a *RelationshipAPI) Unfollow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p artistParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := a.engine.Unfollow(c.Request.Context(), viewer, p.ArtistID); err != nil {
		return nil, err
	}
	return gin.H{"following": false}, nil
}

// GetFollowStatus handles hiver_api.get_follow_status
func (a *RelationshipAPI) GetFollowStatus(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p artistParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	following, err := a.engine.FollowStatus(c.Request.Context(), auth.Viewer(c), p.ArtistID)
	if err != nil {
		return nil, err
	}
	return gin.H{"following": following}, nil
}

// GetFollowerCount handles hiver_api.get_follower_count
func (a *RelationshipAPI) GetFollowerCount(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p artistParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	count, err := a.engine.FollowerCount(c.Request.Context(), p.ArtistID)
	if err != nil {
		return nil, err
	}
	return gin.H{"follower_count": count}, nil
}

// RequestConnection handles hiver_api.request_connection
func (a *RelationshipAPI) RequestConnection(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		ProfileID string `json:"profile_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	conn, err := a.engine.RequestConnection(c.Request.Context(), viewer, p.ProfileID)
	if err != nil {
		return nil, err
	}
	return connectionView(conn, viewer), nil
}

// AcceptConnection handles hiver_api.accept_connection
func (a *RelationshipAPI) AcceptConnection(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.connectionOp(c, params, a.engine.AcceptConnection, "accepted")
}

// RejectConnection handles hiver_api.reject_connection
func (a *RelationshipAPI) RejectConnection(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.connectionOp(c, params, a.engine.RejectConnection, "rejected")
}

// CancelConnection handles hiver_api.cancel_connection
func (a *RelationshipAPI) CancelConnection(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.connectionOp(c, params, a.engine.CancelConnection, "cancelled")
}

// RemoveConnection handles hiver_api.remove_connection
func (a *RelationshipAPI) RemoveConnection(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.connectionOp(c, params, a.engine.RemoveConnection, "removed")
}

// connectionOp runs one of the connection lifecycle transitions that take a
// connection id and report a terminal outcome.
func (a *RelationshipAPI) connectionOp(c *gin.Context, params json.RawMessage, op func(ctx context.Context, connectionID, viewer string) error, outcome string) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p connectionParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := op(c.Request.Context(), p.ConnectionID, viewer); err != nil {
		return nil, err
	}
	return gin.H{"status": outcome}, nil
}

// GetConnectionStatus handles hiver_api.get_connection_status
func (a *RelationshipAPI) GetConnectionStatus(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		ProfileID string `json:"profile_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	status, err := a.engine.ConnectionStatus(c.Request.Context(), viewer, p.ProfileID)
	if err != nil {
		return nil, err
	}
	return gin.H{"status": status.String()}, nil
}

// ListConnections handles hiver_api.list_connections
func (a *RelationshipAPI) ListConnections(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	list, err := a.engine.Connections(c.Request.Context(), viewer)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"connected": connectionViews(list.Connected, viewer),
		"requests":  connectionViews(list.Requests, viewer),
		"sent":      connectionViews(list.Sent, viewer),
	}, nil
}

// connectionView shapes one edge for the response, from the viewer's side
func connectionView(conn *models.Connection, viewer string) gin.H {
	view := gin.H{
		"id":         conn.ID,
		"status":     conn.Status,
		"profile_id": conn.OtherParty(viewer),
		"initiated":  conn.UserID == viewer,
		"created_at": conn.CreatedAt,
	}
	other := conn.Friend
	if conn.UserID != viewer {
		other = conn.User
	}
	if other != nil {
		view["profile"] = gin.H{
			"id":         other.ID,
			"name":       other.Name,
			"avatar_url": other.AvatarURL,
			"level":      other.Level,
		}
	}
	return view
}

func connectionViews(conns []*models.Connection, viewer string) []gin.H {
	views := make([]gin.H, 0, len(conns))
	for _, conn := range conns {
		views = append(views, connectionView(conn, viewer))
	}
	return views
}
