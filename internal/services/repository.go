package services

import (
	"fmt"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/utils"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// RepositoryService owns the repository lifecycle, including the ownership
// transfer that flips the user/organization pair. Activities are recorded
// only when the repository's resolved owner is a user: organization-owned
// repositories stay out of personal feeds.
type RepositoryService struct {
	db         *gorm.DB
	activities *ActivityService
}

func NewRepositoryService(db *gorm.DB, activities *ActivityService) *RepositoryService {
	return &RepositoryService{db: db, activities: activities}
}

type CreateRepositoryRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
	// OrganizationID selects organization ownership; when absent the
	// repository belongs to the acting user.
	OrganizationID *uint `json:"organization_id"`
}

type UpdateRepositoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// TransferRequest names the new owner. Exactly one of UserID and
// OrganizationID must be set; ConfirmName must repeat the repository name.
type TransferRequest struct {
	UserID         *uint  `json:"user_id"`
	OrganizationID *uint  `json:"organization_id"`
	ConfirmName    string `json:"confirm_name" binding:"required"`
}

// List returns every repository the user can administrate or is a tenant
// of: their personal repositories plus all repositories of organizations
// they own or belong to.
func (s *RepositoryService) List(user *models.User) ([]models.Repository, error) {
	var orgIDs []uint
	if err := s.db.Model(&models.Organization{}).
		Where("owner_id = ?", user.ID).
		Pluck("id", &orgIDs).Error; err != nil {
		return nil, err
	}
	var memberOrgIDs []uint
	if err := s.db.Model(&models.OrganizationMember{}).
		Where("user_id = ?", user.ID).
		Pluck("organization_id", &memberOrgIDs).Error; err != nil {
		return nil, err
	}
	orgIDs = append(orgIDs, memberOrgIDs...)

	var repos []models.Repository
	query := s.db.Preload("User").Preload("Organization").Order("updated_at DESC")
	if len(orgIDs) > 0 {
		query = query.Where("user_id = ? OR organization_id IN ?", user.ID, orgIDs)
	} else {
		query = query.Where("user_id = ?", user.ID)
	}
	err := query.Find(&repos).Error
	return repos, err
}

// ListForOrganization returns an organization's repositories.
func (s *RepositoryService) ListForOrganization(org *models.Organization) ([]models.Repository, error) {
	var repos []models.Repository
	err := s.db.Where("organization_id = ?", org.ID).
		Order("updated_at DESC").
		Find(&repos).Error
	return repos, err
}

// Get loads a repository by id, or NotFound.
func (s *RepositoryService) Get(id uint) (*models.Repository, error) {
	var repo models.Repository
	err := s.db.Preload("User").Preload("Organization").First(&repo, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("repository not found")
	}
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// Create makes a repository owned by the actor, or by an organization the
// actor owns. Granting creation rights to non-owner admins would widen the
// trust boundary, so organization ownership requires the organization's
// owner.
func (s *RepositoryService) Create(actor *models.User, req *CreateRepositoryRequest) (*models.Repository, error) {
	repo := models.Repository{
		Name:        req.Name,
		Slug:        utils.Slugify(req.Name),
		Description: req.Description,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		repo.IsPublic = *req.IsPublic
	}

	if req.OrganizationID != nil {
		var org models.Organization
		err := s.db.First(&org, *req.OrganizationID).Error
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("organization not found")
		}
		if err != nil {
			return nil, err
		}
		if !org.IsOwnedBy(actor.ID) {
			return nil, response.NewForbidden("you do not have access to this organization")
		}
		repo.OrganizationID = &org.ID
	} else {
		id := actor.ID
		repo.UserID = &id
	}

	if err := s.db.Create(&repo).Error; err != nil {
		return nil, err
	}

	if repo.UserID != nil {
		s.activities.record(actor, models.ActivityRepositoryCreated,
			fmt.Sprintf("created repository %s", repo.Name),
			models.SubjectKindRepository, repo.ID,
			map[string]interface{}{"name": repo.Name})
	}

	return &repo, nil
}

// Update applies changes to the tracked fields (name, description,
// visibility). An activity is recorded only when something changed and the
// repository belongs to a user, with the per-field diff in the bag.
func (s *RepositoryService) Update(actor *models.User, repo *models.Repository, req *UpdateRepositoryRequest) (*models.Repository, error) {
	changes := map[string]interface{}{}

	if req.Name != nil && *req.Name != repo.Name {
		changes["name"] = map[string]interface{}{"from": repo.Name, "to": *req.Name}
		repo.Name = *req.Name
		repo.Slug = utils.Slugify(*req.Name)
	}
	if req.Description != nil && *req.Description != repo.Description {
		changes["description"] = map[string]interface{}{"from": repo.Description, "to": *req.Description}
		repo.Description = *req.Description
	}
	if req.IsPublic != nil && *req.IsPublic != repo.IsPublic {
		changes["is_public"] = map[string]interface{}{"from": repo.IsPublic, "to": *req.IsPublic}
		repo.IsPublic = *req.IsPublic
	}

	if len(changes) == 0 {
		return repo, nil
	}

	if err := s.db.Save(repo).Error; err != nil {
		return nil, err
	}

	if repo.UserID != nil {
		s.activities.record(actor, models.ActivityRepositoryUpdated,
			fmt.Sprintf("updated repository %s", repo.Name),
			models.SubjectKindRepository, repo.ID,
			map[string]interface{}{"changes": changes})
	}

	return repo, nil
}

// Delete removes a repository. The activity keeps only the name: the
// subject is gone.
func (s *RepositoryService) Delete(actor *models.User, repo *models.Repository) error {
	name := repo.Name
	wasPersonal := repo.UserID != nil

	if err := s.db.Delete(repo).Error; err != nil {
		return err
	}

	if wasPersonal {
		s.activities.record(actor, models.ActivityRepositoryDeleted,
			fmt.Sprintf("deleted repository %s", name),
			models.SubjectKindNone, 0,
			map[string]interface{}{"name": name})
	}
	return nil
}

// Transfer moves the repository to a new owner, flipping the ownership
// pair in a single UPDATE so no intermediate state with both or neither
// side set is ever stored. Transfers record no activity.
func (s *RepositoryService) Transfer(actor *models.User, repo *models.Repository, req *TransferRequest) (*models.Repository, error) {
	if req.ConfirmName != repo.Name {
		return nil, response.NewValidation("confirmation does not match the repository name")
	}
	if (req.UserID == nil) == (req.OrganizationID == nil) {
		return nil, response.NewValidation("exactly one of user_id and organization_id must be set")
	}

	updates := map[string]interface{}{
		"user_id":         nil,
		"organization_id": nil,
	}

	if req.OrganizationID != nil {
		var org models.Organization
		err := s.db.First(&org, *req.OrganizationID).Error
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("organization not found")
		}
		if err != nil {
			return nil, err
		}
		if !org.IsOwnedBy(actor.ID) {
			return nil, response.NewForbidden("you do not have access to this organization")
		}
		updates["organization_id"] = org.ID
	} else {
		var target models.User
		err := s.db.First(&target, *req.UserID).Error
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("user not found")
		}
		if err != nil {
			return nil, err
		}
		updates["user_id"] = target.ID
	}

	// Update through a detached model: repo usually arrives with its
	// Organization association preloaded, and gorm would auto-save that
	// association over the map's nil organization_id, leaving both owner
	// columns set.
	if err := s.db.Model(&models.Repository{ID: repo.ID}).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.Get(repo.ID)
}

type ExploreRequest struct {
	Query    string `form:"q"`
	Owner    string `form:"owner"` // user, organization
	Sort     string `form:"sort"`  // newest, oldest, name
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ExploreResponse struct {
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Items    []models.Repository `json:"items"`
}

// Explore lists public repositories for unauthenticated browsing, with
// optional name/description search and an owner-type filter.
func (s *RepositoryService) Explore(req *ExploreRequest) (*ExploreResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Repository{}).Where("is_public = ?", true)
	if req.Query != "" {
		like := "%" + req.Query + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	switch req.Owner {
	case "user":
		query = query.Where("user_id IS NOT NULL")
	case "organization":
		query = query.Where("organization_id IS NOT NULL")
	}

	var total int64
	query.Count(&total)

	switch req.Sort {
	case "oldest":
		query = query.Order("created_at ASC")
	case "name":
		query = query.Order("name ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var items []models.Repository
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("User").Preload("Organization").
		Offset(offset).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &ExploreResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}
