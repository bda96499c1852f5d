package models

import (
	"encoding/json"
	"time"
)

// Notification types.
const (
	NotificationUserFollow = "user_follow"
	NotificationOrgInvite  = "organization_invite"
)

// Notification is a direct per-recipient alert, distinct from the
// broadcast-style activity feed. Only read/unread state ever mutates.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"` // recipient
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type      string     `gorm:"size:100;index;not null" json:"type"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	Data      string     `gorm:"type:text" json:"-"` // JSON bag
	ActionURL string     `gorm:"size:500" json:"action_url"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// SetData marshals the given bag into the JSON column.
func (n *Notification) SetData(data map[string]interface{}) error {
	if data == nil {
		n.Data = ""
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	n.Data = string(raw)
	return nil
}

// GetData unmarshals the JSON column; an empty column yields nil.
func (n *Notification) GetData() (map[string]interface{}, error) {
	if n.Data == "" {
		return nil, nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(n.Data), &data); err != nil {
		return nil, err
	}
	return data, nil
}
