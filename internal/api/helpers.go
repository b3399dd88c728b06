package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiverapp/hiver/internal/auth"
	"github.com/hiverapp/hiver/pkg/logging"
)

// viewerID returns the authenticated profile id, empty for anonymous requests
func viewerID(c *gin.Context) string {
	return auth.Viewer(c)
}

// nullString wraps a possibly-empty string for a nullable column
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// logAwardFailure records a lost XP award without failing the request
func logAwardFailure(profileID string, err error) {
	logging.GetLogger().Warn("xp award failed",
		zap.String("profile_id", profileID),
		zap.Error(err))
}
