package models

import "time"

// Follow is a directed edge in the follow graph. The composite unique
// index makes duplicate-follow attempts idempotent at the store level;
// self-loops are rejected at the application layer.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"uniqueIndex:idx_follower_following;not null" json:"follower_id"`
	Follower    *User     `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FollowingID uint      `gorm:"uniqueIndex:idx_follower_following;not null" json:"following_id"`
	Following   *User     `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Follow) TableName() string { return "follows" }
