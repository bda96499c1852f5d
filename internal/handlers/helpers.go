package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/middleware"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// currentUser loads the authenticated user for this request. It writes the
// 401 response itself when the token's user no longer exists, so callers
// just return on !ok.
func currentUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}
	return &user, true
}

// paramID parses a numeric path parameter. On failure it writes the 400
// response and returns ok=false.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
