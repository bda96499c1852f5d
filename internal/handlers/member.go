package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/policy"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

type MemberHandler struct {
	db            *gorm.DB
	orgService    *services.OrganizationService
	memberService *services.MemberService
	orgPolicy     *policy.OrganizationPolicy
}

func NewMemberHandler(db *gorm.DB, activities *services.ActivityService) *MemberHandler {
	return &MemberHandler{
		db:            db,
		orgService:    services.NewOrganizationService(db, activities),
		memberService: services.NewMemberService(db),
		orgPolicy:     policy.NewOrganizationPolicy(db),
	}
}

func (h *MemberHandler) loadOrg(c *gin.Context, user *models.User) (*models.Organization, bool) {
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

// List returns the organization's members
// GET /api/organizations/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadOrg(c, user)
	if !ok {
		return
	}
	if !h.orgPolicy.CanViewMembers(user, org) {
		response.Forbidden(c, "you do not have access to this organization")
		return
	}

	members, err := h.memberService.List(org)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

type updateMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes a member's role
// PUT /api/organizations/:id/members/:memberID
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadOrg(c, user)
	if !ok {
		return
	}
	if !h.orgPolicy.CanManageMembers(user, org) {
		response.Forbidden(c, "you do not have access to this organization")
		return
	}

	memberID, ok := paramID(c, "memberID")
	if !ok {
		return
	}

	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateRole(org, memberID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// Remove kicks a member, or lets a member leave. Managing someone else
// requires the manage-members capability; removing your own row is always
// allowed.
// DELETE /api/organizations/:id/members/:memberID
func (h *MemberHandler) Remove(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadOrg(c, user)
	if !ok {
		return
	}

	memberID, ok := paramID(c, "memberID")
	if !ok {
		return
	}

	target, err := h.memberService.GetByID(org, memberID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if target.UserID != user.ID && !h.orgPolicy.CanManageMembers(user, org) {
		response.Forbidden(c, "you do not have access to this organization")
		return
	}

	if err := h.memberService.RemoveMember(org, memberID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed successfully"})
}
