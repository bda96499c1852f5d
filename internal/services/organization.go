package services

import (
	"fmt"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/utils"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// OrganizationService owns the organization lifecycle. Authorization is
// decided by policy in the handlers; every state change here records an
// activity for the acting user (best-effort).
type OrganizationService struct {
	db         *gorm.DB
	activities *ActivityService
}

func NewOrganizationService(db *gorm.DB, activities *ActivityService) *OrganizationService {
	return &OrganizationService{db: db, activities: activities}
}

type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type UpdateOrganizationRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

// List returns the organizations visible to the user: the ones they own
// plus the ones they hold a membership row in.
func (s *OrganizationService) List(user *models.User) ([]models.Organization, error) {
	var memberOrgIDs []uint
	if err := s.db.Model(&models.OrganizationMember{}).
		Where("user_id = ?", user.ID).
		Pluck("organization_id", &memberOrgIDs).Error; err != nil {
		return nil, err
	}

	var orgs []models.Organization
	query := s.db.Preload("Owner").Order("name ASC")
	if len(memberOrgIDs) > 0 {
		query = query.Where("owner_id = ? OR id IN ?", user.ID, memberOrgIDs)
	} else {
		query = query.Where("owner_id = ?", user.ID)
	}
	err := query.Find(&orgs).Error
	return orgs, err
}

// Get loads an organization by id, or NotFound.
func (s *OrganizationService) Get(id uint) (*models.Organization, error) {
	var org models.Organization
	err := s.db.Preload("Owner").First(&org, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("organization not found")
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Create makes the acting user the owner of a new organization.
func (s *OrganizationService) Create(actor *models.User, req *CreateOrganizationRequest) (*models.Organization, error) {
	org := models.Organization{
		Name:        req.Name,
		Slug:        utils.Slugify(req.Name),
		Description: req.Description,
		OwnerID:     actor.ID,
	}
	if err := s.db.Create(&org).Error; err != nil {
		return nil, err
	}

	s.activities.record(actor, models.ActivityOrganizationCreated,
		fmt.Sprintf("created organization %s", org.Name),
		models.SubjectKindOrganization, org.ID,
		map[string]interface{}{"name": org.Name})

	return &org, nil
}

// Update applies name/description changes. An activity is recorded only
// when a tracked field actually changed, with the per-field diff in the
// properties bag.
func (s *OrganizationService) Update(actor *models.User, org *models.Organization, req *UpdateOrganizationRequest) (*models.Organization, error) {
	changes := map[string]interface{}{}

	if req.Name != nil && *req.Name != org.Name {
		changes["name"] = map[string]interface{}{"from": org.Name, "to": *req.Name}
		org.Name = *req.Name
		org.Slug = utils.Slugify(*req.Name)
	}
	if req.Description != nil && *req.Description != org.Description {
		changes["description"] = map[string]interface{}{"from": org.Description, "to": *req.Description}
		org.Description = *req.Description
	}

	if len(changes) == 0 {
		return org, nil
	}

	if err := s.db.Save(org).Error; err != nil {
		return nil, err
	}

	s.activities.record(actor, models.ActivityOrganizationUpdated,
		fmt.Sprintf("updated organization %s", org.Name),
		models.SubjectKindOrganization, org.ID,
		map[string]interface{}{"changes": changes})

	return org, nil
}

// Delete removes an organization along with its membership rows and
// invites. It refuses while the organization still owns repositories:
// those must be transferred or deleted first. The recorded activity
// carries no subject reference, only the name.
func (s *OrganizationService) Delete(actor *models.User, org *models.Organization) error {
	var repoCount int64
	if err := s.db.Model(&models.Repository{}).
		Where("organization_id = ?", org.ID).
		Count(&repoCount).Error; err != nil {
		return err
	}
	if repoCount > 0 {
		return response.NewBusinessRule("the organization still owns repositories; transfer or delete them first")
	}

	name := org.Name
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", org.ID).
			Delete(&models.OrganizationMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", org.ID).
			Delete(&models.OrganizationInvite{}).Error; err != nil {
			return err
		}
		return tx.Delete(org).Error
	})
	if err != nil {
		return err
	}

	s.activities.record(actor, models.ActivityOrganizationDeleted,
		fmt.Sprintf("deleted organization %s", name),
		models.SubjectKindNone, 0,
		map[string]interface{}{"name": name})

	return nil
}
