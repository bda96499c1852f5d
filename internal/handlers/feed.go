package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

type FeedHandler struct {
	db              *gorm.DB
	activityService *services.ActivityService
}

func NewFeedHandler(db *gorm.DB, activities *services.ActivityService) *FeedHandler {
	return &FeedHandler{db: db, activityService: activities}
}

// Get returns the caller's activity feed: their own activities plus those
// of everyone they follow, newest first.
// GET /api/feed
func (h *FeedHandler) Get(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	limit := services.DefaultFeedLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	items, err := h.activityService.GetFeed(user, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, items)
}
