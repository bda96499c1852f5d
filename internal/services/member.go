package services

import (
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// MemberService is the membership and role store for organizations. The
// organization owner never has a membership row: owner authority is
// implicit, and the store refuses to touch a row that would belong to
// the owner.
type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// List returns all membership rows of an organization with users loaded.
func (s *MemberService) List(org *models.Organization) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	err := s.db.Where("organization_id = ?", org.ID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

// GetMember returns a user's membership row, or NotFound.
func (s *MemberService) GetMember(org *models.Organization, userID uint) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := s.db.Where("organization_id = ? AND user_id = ?", org.ID, userID).
		First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("member not found")
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// HasMember reports whether the user has a membership row, at any role.
func (s *MemberService) HasMember(orgID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error
	return count > 0, err
}

// IsAdmin reports whether the user is the organization's owner or holds
// the admin role. The owner check comes first: owner authority supersedes
// any membership row.
func (s *MemberService) IsAdmin(org *models.Organization, userID uint) (bool, error) {
	if org.OwnerID == userID {
		return true, nil
	}
	var count int64
	err := s.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ? AND role = ?", org.ID, userID, models.RoleAdmin).
		Count(&count).Error
	return count > 0, err
}

// AddMember inserts a membership row. The owner must never get one.
func (s *MemberService) AddMember(org *models.Organization, userID uint, role string) (*models.OrganizationMember, error) {
	if !models.ValidRole(role) {
		return nil, response.NewValidation("invalid role, must be 'admin', 'member' or 'viewer'")
	}
	if org.OwnerID == userID {
		return nil, response.NewBusinessRule("the organization owner cannot be added as a member")
	}

	member := models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           role,
	}
	if err := s.db.Create(&member).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, response.NewValidation("this user is already a member of the organization")
		}
		return nil, err
	}
	return &member, nil
}

// UpdateRole changes a member's role. The owner's role is immutable
// through this path.
func (s *MemberService) UpdateRole(org *models.Organization, memberID uint, role string) (*models.OrganizationMember, error) {
	if !models.ValidRole(role) {
		return nil, response.NewValidation("invalid role, must be 'admin', 'member' or 'viewer'")
	}

	member, err := s.getInOrg(org, memberID)
	if err != nil {
		return nil, err
	}
	if member.UserID == org.OwnerID {
		return nil, response.NewBusinessRule("cannot change the role of the organization owner")
	}

	member.Role = role
	if err := s.db.Save(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember deletes a membership row (leave or kick). The owner can
// never be removed through this path. Whether the actor may remove
// someone else is the caller's authorization concern; self-leave is
// always allowed.
func (s *MemberService) RemoveMember(org *models.Organization, memberID uint) error {
	member, err := s.getInOrg(org, memberID)
	if err != nil {
		return err
	}
	if member.UserID == org.OwnerID {
		return response.NewBusinessRule("cannot remove the organization owner from the organization")
	}
	return s.db.Delete(member).Error
}

// GetByID loads a membership row by its primary key and verifies it
// belongs to the organization; a row from another organization renders as
// NotFound.
func (s *MemberService) GetByID(org *models.Organization, memberID uint) (*models.OrganizationMember, error) {
	return s.getInOrg(org, memberID)
}

// getInOrg loads a membership row and verifies it belongs to the
// organization; a row from another organization renders as NotFound.
func (s *MemberService) getInOrg(org *models.Organization, memberID uint) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := s.db.First(&member, memberID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("member not found")
	}
	if err != nil {
		return nil, err
	}
	if member.OrganizationID != org.ID {
		return nil, response.NewNotFound("member not found")
	}
	return &member, nil
}
