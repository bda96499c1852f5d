// Package policy holds the authorization rules: stateless predicates
// mapping (acting user, target entity, action) to allow/deny. Policies
// never return errors; callers translate false into an access-denied
// response.
package policy

import (
	"github.com/gitfolio/gitfolio/internal/models"
	"gorm.io/gorm"
)

// RepositoryPolicy decides repository access.
//
// Private repositories of an organization are accessible to the
// organization's OWNER only; org admins, members and viewers get no
// implicit repository rights. This asymmetry is intentional and covered
// by tests; do not widen it to "any org admin".
type RepositoryPolicy struct {
	db *gorm.DB
}

func NewRepositoryPolicy(db *gorm.DB) *RepositoryPolicy {
	return &RepositoryPolicy{db: db}
}

// CanView allows anyone on public repositories, and the direct user owner
// or the owning organization's owner on private ones.
func (p *RepositoryPolicy) CanView(user *models.User, repo *models.Repository) bool {
	if repo.IsPublic {
		return true
	}
	return p.ownsPrivately(user, repo)
}

// CanUpdate allows the direct user owner or the owning organization's owner.
func (p *RepositoryPolicy) CanUpdate(user *models.User, repo *models.Repository) bool {
	return p.ownsPrivately(user, repo)
}

// CanDelete follows the same rule as CanUpdate.
func (p *RepositoryPolicy) CanDelete(user *models.User, repo *models.Repository) bool {
	return p.ownsPrivately(user, repo)
}

func (p *RepositoryPolicy) ownsPrivately(user *models.User, repo *models.Repository) bool {
	if user == nil {
		return false
	}
	if repo.UserID != nil && *repo.UserID == user.ID {
		return true
	}
	if repo.OrganizationID != nil {
		var org models.Organization
		if err := p.db.First(&org, *repo.OrganizationID).Error; err != nil {
			return false
		}
		return org.OwnerID == user.ID
	}
	return false
}

// OrganizationPolicy decides organization access. Owner authority is
// implicit (no membership row); every check is owner-or-role.
type OrganizationPolicy struct {
	db *gorm.DB
}

func NewOrganizationPolicy(db *gorm.DB) *OrganizationPolicy {
	return &OrganizationPolicy{db: db}
}

// CanView allows the owner and any member, at any role.
func (p *OrganizationPolicy) CanView(user *models.User, org *models.Organization) bool {
	if user == nil {
		return false
	}
	return org.OwnerID == user.ID || p.hasMember(user, org)
}

// CanUpdate allows the owner and admins.
func (p *OrganizationPolicy) CanUpdate(user *models.User, org *models.Organization) bool {
	if user == nil {
		return false
	}
	return org.OwnerID == user.ID || p.hasAdmin(user, org)
}

// CanDelete allows the owner only.
func (p *OrganizationPolicy) CanDelete(user *models.User, org *models.Organization) bool {
	return user != nil && org.OwnerID == user.ID
}

// CanViewMembers allows the owner and any member.
func (p *OrganizationPolicy) CanViewMembers(user *models.User, org *models.Organization) bool {
	return p.CanView(user, org)
}

// CanManageMembers allows the owner and admins.
func (p *OrganizationPolicy) CanManageMembers(user *models.User, org *models.Organization) bool {
	return p.CanUpdate(user, org)
}

// CanInviteMembers allows the owner and admins.
func (p *OrganizationPolicy) CanInviteMembers(user *models.User, org *models.Organization) bool {
	return p.CanUpdate(user, org)
}

func (p *OrganizationPolicy) hasMember(user *models.User, org *models.Organization) bool {
	var count int64
	p.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", org.ID, user.ID).
		Count(&count)
	return count > 0
}

func (p *OrganizationPolicy) hasAdmin(user *models.User, org *models.Organization) bool {
	var count int64
	p.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ? AND role = ?", org.ID, user.ID, models.RoleAdmin).
		Count(&count)
	return count > 0
}
