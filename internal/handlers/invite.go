package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/config"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/policy"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

type InviteHandler struct {
	db            *gorm.DB
	orgService    *services.OrganizationService
	inviteService *services.InviteService
	orgPolicy     *policy.OrganizationPolicy
}

func NewInviteHandler(db *gorm.DB, cfg *config.Config, activities *services.ActivityService) *InviteHandler {
	mailer := services.NewEmailService(cfg)
	return &InviteHandler{
		db:            db,
		orgService:    services.NewOrganizationService(db, activities),
		inviteService: services.NewInviteService(db, mailer, services.GetTaskQueue()),
		orgPolicy:     policy.NewOrganizationPolicy(db),
	}
}

func (h *InviteHandler) loadOrg(c *gin.Context, user *models.User) (*models.Organization, bool) {
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

// Create issues a new invite
// POST /api/organizations/:id/invites
func (h *InviteHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	org, ok := h.loadOrg(c, user)
	if !ok {
		return
	}
	if !h.orgPolicy.CanInviteMembers(user, org) {
		response.Forbidden(c, "you do not have access to this organization")
		return
	}

	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invite, err := h.inviteService.Create(org, user, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, invite)
}

// ListPending lists the organization's pending invites
// GET /api/organizations/:id/invites
func (h *InviteHandler) ListPending(c *gin.Context) {
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

	invites, err := h.inviteService.ListPending(org)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invites)
}

// Cancel withdraws an invite
// DELETE /api/organizations/:id/invites/:inviteID
func (h *InviteHandler) Cancel(c *gin.Context) {
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

	inviteID, ok := paramID(c, "inviteID")
	if !ok {
		return
	}

	if err := h.inviteService.Cancel(org, inviteID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invitation cancelled"})
}

// Show resolves an invite token to its organization for the landing page.
// The token itself is the capability; no authentication is required.
// GET /api/invites/:token
func (h *InviteHandler) Show(c *gin.Context) {
	invite, err := h.inviteService.GetByToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"organization": invite.Organization,
		"email":        invite.Email,
		"role":         invite.Role,
		"expires_at":   invite.ExpiresAt,
	})
}

// Accept redeems an invite for the signed-in user
// POST /api/invites/:token/accept
func (h *InviteHandler) Accept(c *gin.Context) {
	user, ok := currentUser(c, h.db)
	if !ok {
		return
	}

	alreadyMember, err := h.inviteService.Accept(c.Param("token"), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	if alreadyMember {
		response.Success(c, gin.H{"message": "you are already a member of this organization"})
		return
	}
	response.Success(c, gin.H{"message": "invitation accepted"})
}

// Decline turns down an invite
// POST /api/invites/:token/decline
func (h *InviteHandler) Decline(c *gin.Context) {
	if err := h.inviteService.Decline(c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invitation declined"})
}
