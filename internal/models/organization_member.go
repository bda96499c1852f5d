package models

import "time"

// Membership roles, from most to least privileged. The organization owner
// holds no role row; owner rights are implicit.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// ValidRole reports whether role is one of the assignable membership roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember || role == RoleViewer
}

// OrganizationMember is one user's membership in one organization. The
// composite unique index makes (organization, user) pairs atomic; the
// owner must never have a row here. Rows are hard-deleted: leaving or
// being removed keeps no residue, and a removed user can be re-added
// without tripping the unique index.
type OrganizationMember struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	OrganizationID uint          `gorm:"uniqueIndex:idx_org_user;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	UserID         uint          `gorm:"uniqueIndex:idx_org_user;not null" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role           string        `gorm:"size:50;default:member" json:"role"` // admin, member, viewer
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (OrganizationMember) TableName() string { return "organization_members" }

// IsAdmin reports whether this membership row carries the admin role.
func (m *OrganizationMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}
