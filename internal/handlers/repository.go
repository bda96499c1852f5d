package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/middleware"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/policy"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

type RepositoryHandler struct {
	db          *gorm.DB
	repoService *services.RepositoryService
	repoPolicy  *policy.RepositoryPolicy
}

func NewRepositoryHandler(db *gorm.DB, activities *services.ActivityService) *RepositoryHandler {
	return &RepositoryHandler{
		db:          db,
		repoService: services.NewRepositoryService(db, activities),
		repoPolicy:  policy.NewRepositoryPolicy(db),
	}
}

// List returns the caller's accessible repositories
// GET /api/repositories
func (h *RepositoryHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	repos, err := h.repoService.List(user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, repos)
}

// Create makes a new repository
// POST /api/repositories
func (h *RepositoryHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	var req services.CreateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	repo, err := h.repoService.Create(user, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, repo)
}

// loadViewable loads the repository and enforces the view rule. Public
// repositories pass for anyone, including anonymous users. A view denial
// renders as the same NotFound a missing id gets, so the response never
// confirms that a private repository exists.
func (h *RepositoryHandler) loadViewable(c *gin.Context, user *models.User) (*models.Repository, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	repo, err := h.repoService.Get(id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !h.repoPolicy.CanView(user, repo) {
		response.NotFound(c, "repository not found")
		return nil, false
	}
	return repo, true
}

// Get returns one repository
// GET /api/repositories/:id
func (h *RepositoryHandler) Get(c *gin.Context) {
	// Optional auth: anonymous users can view public repositories.
	var user *models.User
	if id := middleware.GetUserID(c); id != 0 {
		var u models.User
		if err := h.db.First(&u, id).Error; err == nil {
			user = &u
		}
	}

	repo, ok := h.loadViewable(c, user)
	if !ok {
		return
	}

	response.Success(c, repo)
}

// Update changes repository fields
// PUT /api/repositories/:id
func (h *RepositoryHandler) Update(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	repo, ok := h.loadViewable(c, user)
	if !ok {
		return
	}
	if !h.repoPolicy.CanUpdate(user, repo) {
		response.Forbidden(c, "you do not have access to this repository")
		return
	}

	var req services.UpdateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.repoService.Update(user, repo, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, updated)
}

// Delete removes a repository
// DELETE /api/repositories/:id
func (h *RepositoryHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	repo, ok := h.loadViewable(c, user)
	if !ok {
		return
	}
	if !h.repoPolicy.CanDelete(user, repo) {
		response.Forbidden(c, "you do not have access to this repository")
		return
	}

	if err := h.repoService.Delete(user, repo); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "repository deleted successfully"})
}

// Transfer moves the repository to a new owner
// POST /api/repositories/:id/transfer
func (h *RepositoryHandler) Transfer(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	repo, ok := h.loadViewable(c, user)
	if !ok {
		return
	}
	if !h.repoPolicy.CanDelete(user, repo) {
		response.Forbidden(c, "you do not have access to this repository")
		return
	}

	var req services.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	transferred, err := h.repoService.Transfer(user, repo, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, transferred)
}

// Explore lists public repositories
// GET /api/explore
func (h *RepositoryHandler) Explore(c *gin.Context) {
	var req services.ExploreRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.repoService.Explore(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}
