package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

type FollowHandler struct {
	db            *gorm.DB
	followService *services.FollowService
}

func NewFollowHandler(db *gorm.DB) *FollowHandler {
	return &FollowHandler{
		db:            db,
		followService: services.NewFollowService(db, services.NewNotificationService(db)),
	}
}

func (h *FollowHandler) loadTarget(c *gin.Context) (*models.User, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var target models.User
	if err := h.db.First(&target, id).Error; err != nil {
		response.NotFound(c, "user not found")
		return nil, false
	}
	return &target, true
}

// Follow adds the caller -> target edge
// POST /api/users/:id/follow
func (h *FollowHandler) Follow(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	target, ok := h.loadTarget(c)
	if !ok {
		return
	}

	if err := h.followService.Follow(user, target); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "following " + target.Name})
}

// Unfollow removes the caller -> target edge
// DELETE /api/users/:id/follow
func (h *FollowHandler) Unfollow(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	target, ok := h.loadTarget(c)
	if !ok {
		return
	}

	if err := h.followService.Unfollow(user, target); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "unfollowed " + target.Name})
}

// Followers lists users following the target
// GET /api/users/:id/followers
func (h *FollowHandler) Followers(c *gin.Context) {
	target, ok := h.loadTarget(c)
	if !ok {
		return
	}

	var req services.FollowListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.followService.Followers(target, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Following lists users the target follows
// GET /api/users/:id/following
func (h *FollowHandler) Following(c *gin.Context) {
	target, ok := h.loadTarget(c)
	if !ok {
		return
	}

	var req services.FollowListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.followService.Following(target, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}
