package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated principal. Users own repositories
// directly, own organizations, hold organization memberships, and follow
// each other.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Initials returns the first letter of each word of the user's name,
// used for avatar placeholders.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		r := []rune(part)
		b.WriteRune(r[0])
	}
	return b.String()
}
