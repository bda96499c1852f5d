package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/logger"
	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/gorm"
)

// InviteService drives the organization invite lifecycle:
// Create -> Pending -> Accepted | declined/cancelled (deleted), with
// expiry evaluated lazily at every lookup. Authorization (who may invite
// or cancel) is the caller's concern; this service owns the state machine.
type InviteService struct {
	db     *gorm.DB
	mailer *EmailService
	queue  TaskQueue
}

func NewInviteService(db *gorm.DB, mailer *EmailService, queue TaskQueue) *InviteService {
	return &InviteService{db: db, mailer: mailer, queue: queue}
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// Create issues a new invite for the organization. It rejects an email
// that already belongs to a member or that has a pending invite; stale
// non-pending rows for the same (organization, email) are replaced inside
// the transaction so the composite unique index stays satisfiable and
// closes the duplicate-invite race.
func (s *InviteService) Create(org *models.Organization, sender *models.User, req *CreateInviteRequest) (*models.OrganizationInvite, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, response.NewValidation("email is required")
	}
	if !models.ValidRole(req.Role) {
		return nil, response.NewValidation("invalid role, must be 'admin', 'member' or 'viewer'")
	}

	// Already a member? Checked against the exact email, like membership
	// itself (not case-insensitively).
	var existingUser models.User
	err := s.db.Where("email = ?", email).First(&existingUser).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err == nil {
		var count int64
		s.db.Model(&models.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", org.ID, existingUser.ID).
			Count(&count)
		if count > 0 {
			return nil, response.NewValidation("this user is already a member of the organization")
		}
	}

	now := time.Now()

	var pending int64
	s.db.Model(&models.OrganizationInvite{}).
		Where("organization_id = ? AND email = ? AND accepted_at IS NULL AND expires_at > ?", org.ID, email, now).
		Count(&pending)
	if pending > 0 {
		return nil, response.NewValidation("an invitation has already been sent to this email")
	}

	invite := models.OrganizationInvite{
		OrganizationID: org.ID,
		SenderID:       sender.ID,
		Email:          email,
		Role:           req.Role,
		Token:          models.GenerateInviteToken(),
		ExpiresAt:      now.Add(models.InviteTTL),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Drop accepted or expired leftovers for this (org, email) so the
		// insert below can only collide with a concurrent pending invite.
		if err := tx.
			Where("organization_id = ? AND email = ?", org.ID, email).
			Where("accepted_at IS NOT NULL OR expires_at <= ?", now).
			Delete(&models.OrganizationInvite{}).Error; err != nil {
			return err
		}
		return tx.Create(&invite).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, response.NewValidation("an invitation has already been sent to this email")
		}
		return nil, err
	}

	s.dispatchMail(&invite, org, sender)
	return &invite, nil
}

// dispatchMail enqueues the invite email. Delivery is best-effort and may
// be a no-op when mail is not configured.
func (s *InviteService) dispatchMail(invite *models.OrganizationInvite, org *models.Organization, sender *models.User) {
	if s.mailer == nil || s.queue == nil {
		return
	}
	task := s.mailer.BuildInviteTask(invite, org, sender)
	if task == nil {
		return
	}
	if err := s.queue.Enqueue(task); err != nil {
		logger.Warn().Err(err).Str("email", invite.Email).Msg("invite mail not enqueued")
	}
}

// GetByToken returns the pending invite for a token with its organization
// loaded. Accepted, expired and unknown tokens all render as NotFound;
// expiry has no distinct status.
func (s *InviteService) GetByToken(token string) (*models.OrganizationInvite, error) {
	var invite models.OrganizationInvite
	err := s.db.Preload("Organization").Preload("Sender").
		Where("token = ? AND accepted_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&invite).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("invitation not found")
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// Accept redeems a pending invite for the acting user. The actor's email
// must match the invite exactly. If the actor already belongs to the
// organization the invite is just marked accepted (idempotent
// short-circuit) and alreadyMember is true. Otherwise the membership row
// and the accepted marker are written in one transaction: partial
// application is never visible.
func (s *InviteService) Accept(token string, actor *models.User) (alreadyMember bool, err error) {
	invite, err := s.GetByToken(token)
	if err != nil {
		return false, err
	}

	if actor.Email != invite.Email {
		return false, response.NewForbidden("this invitation was not sent to your email address")
	}

	now := time.Now()

	// The owner and existing members just consume the invite; no row is
	// created, so the owner can never end up with a membership row.
	member := invite.OrganizationID != 0 && invite.Organization != nil && invite.Organization.OwnerID == actor.ID
	if !member {
		var count int64
		s.db.Model(&models.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", invite.OrganizationID, actor.ID).
			Count(&count)
		member = count > 0
	}
	if member {
		err = s.db.Model(invite).Update("accepted_at", now).Error
		return true, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		newMember := models.OrganizationMember{
			OrganizationID: invite.OrganizationID,
			UserID:         actor.ID,
			Role:           invite.Role,
		}
		if err := tx.Create(&newMember).Error; err != nil {
			return err
		}
		return tx.Model(invite).Update("accepted_at", now).Error
	})
	return false, err
}

// Decline deletes a pending invite. No declined residue is kept.
func (s *InviteService) Decline(token string) error {
	invite, err := s.GetByToken(token)
	if err != nil {
		return err
	}
	return s.db.Delete(invite).Error
}

// Cancel deletes an invite of the organization regardless of its state.
// An invite id belonging to another organization renders as NotFound.
func (s *InviteService) Cancel(org *models.Organization, inviteID uint) error {
	var invite models.OrganizationInvite
	err := s.db.First(&invite, inviteID).Error
	if err == gorm.ErrRecordNotFound {
		return response.NewNotFound("invitation not found")
	}
	if err != nil {
		return err
	}
	if invite.OrganizationID != org.ID {
		return response.NewNotFound("invitation not found")
	}
	return s.db.Delete(&invite).Error
}

// ListPending returns the organization's actionable invites for the
// members page.
func (s *InviteService) ListPending(org *models.Organization) ([]models.OrganizationInvite, error) {
	var invites []models.OrganizationInvite
	err := s.db.
		Where("organization_id = ? AND accepted_at IS NULL AND expires_at > ?", org.ID, time.Now()).
		Order("created_at ASC").
		Find(&invites).Error
	return invites, err
}

// PurgeExpired hard-deletes unaccepted invites whose deadline passed more
// than keep ago. Housekeeping only: lazy expiry at lookup time is what
// actually retires an invite.
func (s *InviteService) PurgeExpired(keep time.Duration) (int64, error) {
	cutoff := time.Now().Add(-keep)
	result := s.db.
		Where("accepted_at IS NULL AND expires_at < ?", cutoff).
		Delete(&models.OrganizationInvite{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		logger.Info().Int64("purged", result.RowsAffected).Msg(fmt.Sprintf("purged invites expired before %s", cutoff.Format(time.RFC3339)))
	}
	return result.RowsAffected, nil
}
