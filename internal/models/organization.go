package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization is a shared tenant. It has exactly one owner (a User); the
// owner never appears in organization_members; owner authority is implicit
// and checked separately from membership rows everywhere.
type Organization struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Slug        string         `gorm:"size:255;index" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Organization) TableName() string { return "organizations" }

// IsOwnedBy reports whether the given user is the organization's owner.
func (o *Organization) IsOwnedBy(userID uint) bool {
	return o.OwnerID == userID
}
