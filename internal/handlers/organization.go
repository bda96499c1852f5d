package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/policy"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

type OrganizationHandler struct {
	db          *gorm.DB
	orgService  *services.OrganizationService
	repoService *services.RepositoryService
	orgPolicy   *policy.OrganizationPolicy
}

func NewOrganizationHandler(db *gorm.DB, activities *services.ActivityService) *OrganizationHandler {
	return &OrganizationHandler{
		db:          db,
		orgService:  services.NewOrganizationService(db, activities),
		repoService: services.NewRepositoryService(db, activities),
		orgPolicy:   policy.NewOrganizationPolicy(db),
	}
}

// loadVisible loads the organization and enforces the view rule. The deny
// message never distinguishes a hidden organization from a missing one.
func (h *OrganizationHandler) loadVisible(c *gin.Context, user *models.User) (*models.Organization, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	org, err := h.orgService.Get(id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !h.orgPolicy.CanView(user, org) {
		response.Forbidden(c, "you do not have access to this organization")
		return nil, false
	}
	return org, true
}

// List returns the organizations the user owns or belongs to
// GET /api/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	orgs, err := h.orgService.List(user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, orgs)
}

// Create makes a new organization owned by the caller
// POST /api/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	var req services.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	org, err := h.orgService.Create(user, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, org)
}

// Get returns one organization
// GET /api/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadVisible(c, user)
	if !ok {
		return
	}

	response.Success(c, org)
}

// Update changes name/description
// PUT /api/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadVisible(c, user)
	if !ok {
		return
	}
	if !h.orgPolicy.CanUpdate(user, org) {
		response.Forbidden(c, "you do not have access to this organization")
		return
	}

	var req services.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.orgService.Update(user, org, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, updated)
}

// Delete removes an organization (owner only)
// DELETE /api/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadVisible(c, user)
	if !ok {
		return
	}
	if !h.orgPolicy.CanDelete(user, org) {
		response.Forbidden(c, "you do not have access to this organization")
		return
	}

	if err := h.orgService.Delete(user, org); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "organization deleted successfully"})
}

// Repositories lists an organization's repositories
// GET /api/organizations/:id/repositories
func (h *OrganizationHandler) Repositories(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadVisible(c, user)
	if !ok {
		return
	}

	repos, err := h.repoService.ListForOrganization(org)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, repos)
}
