package models

import (
	"fmt"
	"time"

	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// Repository is the owned resource at the center of the permission model.
// Exactly one of UserID / OrganizationID is set; the pair flips on
// transfer and is never both set or both empty.
type Repository struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Slug           string         `gorm:"size:255;index" json:"slug"`
	Description    string         `gorm:"type:text" json:"description"`
	// No gorm default tag: gorm drops zero-value fields carrying one from
	// the INSERT, which would silently store private repositories as
	// public. The service layer defaults visibility instead.
	IsPublic       bool           `json:"is_public"`
	UserID         *uint          `gorm:"index" json:"user_id"`
	User           *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrganizationID *uint          `gorm:"index" json:"organization_id"`
	Organization   *Organization  `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Repository) TableName() string { return "repositories" }

// OwnerKind tags which side of the XOR ownership pair is set.
type OwnerKind string

const (
	OwnerKindUser         OwnerKind = "user"
	OwnerKindOrganization OwnerKind = "organization"
)

// RepositoryOwner is the resolved owner of a repository: a tagged union of
// User and Organization. Exactly the field matching Kind is non-nil.
type RepositoryOwner struct {
	Kind         OwnerKind
	User         *User
	Organization *Organization
}

// Name returns the display name of whichever principal owns the repository.
func (o *RepositoryOwner) Name() string {
	if o.Kind == OwnerKindOrganization {
		return o.Organization.Name
	}
	return o.User.Name
}

// Owner resolves the repository's owner from the loaded User/Organization
// associations. It fails fast with an invariant-violation error when the
// XOR invariant is broken rather than silently picking a side.
func (r *Repository) Owner(db *gorm.DB) (*RepositoryOwner, error) {
	switch {
	case r.OrganizationID != nil && r.UserID != nil:
		return nil, response.NewInvariantViolation(
			fmt.Sprintf("repository %d has both a user and an organization owner", r.ID))
	case r.OrganizationID != nil:
		if r.Organization == nil {
			var org Organization
			if err := db.First(&org, *r.OrganizationID).Error; err != nil {
				return nil, err
			}
			r.Organization = &org
		}
		return &RepositoryOwner{Kind: OwnerKindOrganization, Organization: r.Organization}, nil
	case r.UserID != nil:
		if r.User == nil {
			var user User
			if err := db.First(&user, *r.UserID).Error; err != nil {
				return nil, err
			}
			r.User = &user
		}
		return &RepositoryOwner{Kind: OwnerKindUser, User: r.User}, nil
	default:
		return nil, response.NewInvariantViolation(
			fmt.Sprintf("repository %d has no owner", r.ID))
	}
}

// OwnerName returns the owner's display name for listings.
func (r *Repository) OwnerName(db *gorm.DB) (string, error) {
	owner, err := r.Owner(db)
	if err != nil {
		return "", err
	}
	return owner.Name(), nil
}
