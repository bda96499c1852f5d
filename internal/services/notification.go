package services

import (
	"time"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// NotificationService is the per-user notification outbox.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Create appends a notification to the recipient's inbox.
func (s *NotificationService) Create(recipientID uint, notificationType, title, message string, data map[string]interface{}, actionURL string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:    recipientID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		ActionURL: actionURL,
	}
	if err := notification.SetData(data); err != nil {
		return nil, err
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

type NotificationListRequest struct {
	Filter   string `form:"filter"` // all, read, unread
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type NotificationListResponse struct {
	Total       int64                 `json:"total"`
	UnreadCount int64                 `json:"unread_count"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
	Items       []models.Notification `json:"items"`
}

// List returns the recipient's notifications, newest first, optionally
// filtered by read state.
func (s *NotificationService) List(user *models.User, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	switch req.Filter {
	case "read":
		query = query.Where("read_at IS NOT NULL")
	case "unread":
		query = query.Where("read_at IS NULL")
	}

	var total int64
	query.Count(&total)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	unread, err := s.UnreadCount(user)
	if err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:       total,
		UnreadCount: unread,
		Page:        req.Page,
		PageSize:    req.PageSize,
		Items:       items,
	}, nil
}

// get loads a notification and verifies the actor is its recipient.
func (s *NotificationService) get(actor *models.User, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("notification not found")
		}
		return nil, err
	}
	if notification.UserID != actor.ID {
		return nil, response.NewForbidden("you do not have access to this notification")
	}
	return &notification, nil
}

// MarkRead marks one notification as read. Idempotent: an already-read
// notification keeps its original read timestamp.
func (s *NotificationService) MarkRead(actor *models.User, id uint) (*models.Notification, error) {
	notification, err := s.get(actor, id)
	if err != nil {
		return nil, err
	}
	if notification.ReadAt == nil {
		now := time.Now()
		notification.ReadAt = &now
		if err := s.db.Save(notification).Error; err != nil {
			return nil, err
		}
	}
	return notification, nil
}

// MarkUnread clears the read marker. Idempotent.
func (s *NotificationService) MarkUnread(actor *models.User, id uint) (*models.Notification, error) {
	notification, err := s.get(actor, id)
	if err != nil {
		return nil, err
	}
	if notification.ReadAt != nil {
		notification.ReadAt = nil
		if err := s.db.Save(notification).Error; err != nil {
			return nil, err
		}
	}
	return notification, nil
}

// MarkAllRead stamps every currently-unread notification for the user in
// one UPDATE. Snapshot semantics: rows created concurrently are not
// guaranteed to be included.
func (s *NotificationService) MarkAllRead(user *models.User) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", user.ID).
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

// Delete removes a notification from the recipient's inbox.
func (s *NotificationService) Delete(actor *models.User, id uint) error {
	notification, err := s.get(actor, id)
	if err != nil {
		return err
	}
	return s.db.Delete(notification).Error
}

// UnreadCount counts notifications without a read marker.
func (s *NotificationService) UnreadCount(user *models.User) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", user.ID).
		Count(&count).Error
	return count, err
}
