package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/hiverapp/hiver/internal/recommend"
)

// RecommendAPI exposes the personalized recommendation method
type RecommendAPI struct {
	recommender *recommend.Recommender
}

// NewRecommendAPI creates a new recommend API
func NewRecommendAPI(recommender *recommend.Recommender) *RecommendAPI {
	return &RecommendAPI{recommender: recommender}
}

// RecommendHives handles recommend.hives
func (a *RecommendAPI) RecommendHives(c *gin.Context, params json.RawMessage) (interface{}, error) {
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
	hives := a.recommender.RecommendHives(c.Request.Context(), viewer, clampLimit(p.Limit))
	return hiveViews(hives), nil
}
