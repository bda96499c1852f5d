package services

import (
	"fmt"
	"strings"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/logger"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// FollowService maintains the directed follow graph between users and
// emits the user_follow notification on new edges.
type FollowService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewFollowService(db *gorm.DB, notifications *NotificationService) *FollowService {
	return &FollowService{db: db, notifications: notifications}
}

// Follow adds the actor -> target edge. Self-follows are rejected;
// following someone already followed is a no-op. The unique index on
// (follower_id, following_id) makes the idempotency hold under
// concurrent duplicate attempts too.
func (s *FollowService) Follow(actor, target *models.User) error {
	if actor.ID == target.ID {
		return response.NewBusinessRule("you cannot follow yourself")
	}

	following, err := s.IsFollowing(actor, target)
	if err != nil {
		return err
	}
	if following {
		return nil
	}

	follow := models.Follow{FollowerID: actor.ID, FollowingID: target.ID}
	if err := s.db.Create(&follow).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}

	// Notification is auxiliary: a failed write must not fail the follow.
	_, err = s.notifications.Create(
		target.ID,
		models.NotificationUserFollow,
		fmt.Sprintf("%s started following you", actor.Name),
		"",
		map[string]interface{}{
			"follower": map[string]interface{}{
				"id":    actor.ID,
				"name":  actor.Name,
				"email": actor.Email,
			},
		},
		"",
	)
	if err != nil {
		logger.Warn().Err(err).Uint("target", target.ID).Msg("follow notification dropped")
	}
	return nil
}

// Unfollow removes the actor -> target edge. Idempotent.
func (s *FollowService) Unfollow(actor, target *models.User) error {
	return s.db.
		Where("follower_id = ? AND following_id = ?", actor.ID, target.ID).
		Delete(&models.Follow{}).Error
}

// IsFollowing reports whether a follows b.
func (s *FollowService) IsFollowing(a, b *models.User) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", a.ID, b.ID).
		Count(&count).Error
	return count > 0, err
}

// IsFollowedBy reports whether b follows a.
func (s *FollowService) IsFollowedBy(a, b *models.User) (bool, error) {
	return s.IsFollowing(b, a)
}

// FollowerCount counts users following the given user. Computed on read;
// there is no counter cache at this scale.
func (s *FollowService) FollowerCount(user *models.User) (int64, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("following_id = ?", user.ID).
		Count(&count).Error
	return count, err
}

// FollowingCount counts users the given user follows.
func (s *FollowService) FollowingCount(user *models.User) (int64, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ?", user.ID).
		Count(&count).Error
	return count, err
}

type FollowListRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

type FollowListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

// Followers lists users following the given user.
func (s *FollowService) Followers(user *models.User, req *FollowListRequest) (*FollowListResponse, error) {
	return s.listEdgeUsers(user, req, "following_id", "follower_id")
}

// Following lists users the given user follows.
func (s *FollowService) Following(user *models.User, req *FollowListRequest) (*FollowListResponse, error) {
	return s.listEdgeUsers(user, req, "follower_id", "following_id")
}

func (s *FollowService) listEdgeUsers(user *models.User, req *FollowListRequest, whereCol, selectCol string) (*FollowListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	var total int64
	s.db.Model(&models.Follow{}).Where(whereCol+" = ?", user.ID).Count(&total)

	var ids []uint
	offset := (req.Page - 1) * req.PageSize
	if err := s.db.Model(&models.Follow{}).
		Where(whereCol+" = ?", user.ID).
		Order("created_at DESC").
		Offset(offset).Limit(req.PageSize).
		Pluck(selectCol, &ids).Error; err != nil {
		return nil, err
	}

	var users []models.User
	if len(ids) > 0 {
		if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
	}

	return &FollowListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    users,
	}, nil
}

// isUniqueViolation detects a unique-constraint failure across the three
// supported drivers without importing their error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
