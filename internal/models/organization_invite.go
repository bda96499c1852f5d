package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InviteTTL is how long a fresh invite stays actionable.
const InviteTTL = 7 * 24 * time.Hour

// OrganizationInvite is a time-boxed, token-addressed offer of membership
// at a specific role, sent to an email address.
//
// Lifecycle: Pending (accepted_at null, not expired) -> Accepted
// (accepted_at set) or deleted (declined/cancelled). Expiry is evaluated
// lazily at query time; there is no state flag for it.
//
// The (organization_id, email) unique index closes the duplicate-invite
// race: creation replaces stale non-pending rows for the pair inside its
// transaction, so a concurrent duplicate fails on the index instead of
// racing past the application-level check. Rows are hard-deleted.
type OrganizationInvite struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	OrganizationID uint          `gorm:"uniqueIndex:idx_org_invite_email;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	SenderID       uint          `gorm:"not null" json:"sender_id"`
	Sender         *User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Email          string        `gorm:"uniqueIndex:idx_org_invite_email;size:255;not null" json:"email"`
	Role           string        `gorm:"size:50;default:member" json:"role"` // admin, member, viewer
	Token          string        `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt      time.Time     `gorm:"not null" json:"expires_at"`
	AcceptedAt     *time.Time    `json:"accepted_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (OrganizationInvite) TableName() string { return "organization_invites" }

// IsPending reports whether the invite is actionable (view/accept/decline).
func (i *OrganizationInvite) IsPending(now time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.After(now)
}

// IsExpired reports whether an unaccepted invite has passed its deadline.
func (i *OrganizationInvite) IsExpired(now time.Time) bool {
	return i.AcceptedAt == nil && !i.ExpiresAt.After(now)
}

// GenerateInviteToken returns a 64-character unguessable token: two v4
// UUIDs with the dashes stripped (32 hex chars each).
func GenerateInviteToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
