package services

import (
	"testing"
	"time"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/response"
)

func TestInviteCreate_Pending(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(invite.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(invite.Token))
	}
	if !invite.IsPending(time.Now()) {
		t.Error("fresh invite should be pending")
	}
	wantExpiry := time.Now().Add(models.InviteTTL)
	if diff := invite.ExpiresAt.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expires_at %v not ~7 days out", invite.ExpiresAt)
	}
}

func TestInviteCreate_InvalidRole(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	_, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: "superuser"})
	if !response.IsValidation(err) {
		t.Errorf("expected validation error for bad role, got %v", err)
	}
}

func TestInviteCreate_RejectsExistingMember(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	member := createUser(t, db, "Member", "member@example.com")
	org := createOrg(t, db, "acme", owner)
	addMember(t, db, org, member, models.RoleMember)
	svc := NewInviteService(db, nil, nil)

	_, err := svc.Create(org, owner, &CreateInviteRequest{Email: member.Email, Role: models.RoleMember})
	if !response.IsValidation(err) {
		t.Errorf("expected validation error for existing member, got %v", err)
	}
}

func TestInviteCreate_RejectsDuplicatePending(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	if _, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleAdmin})
	if !response.IsValidation(err) {
		t.Errorf("expected validation error for duplicate pending invite, got %v", err)
	}
}

func TestInviteCreate_ReplacesExpiredRow(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	stale := models.OrganizationInvite{
		OrganizationID: org.ID,
		SenderID:       owner.ID,
		Email:          "new@example.com",
		Role:           models.RoleMember,
		Token:          models.GenerateInviteToken(),
		ExpiresAt:      time.Now().Add(-time.Hour),
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale invite: %v", err)
	}

	// The expired row occupies the (org, email) unique slot; a new invite
	// must replace it rather than fail.
	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create after expiry: %v", err)
	}

	var count int64
	db.Model(&models.OrganizationInvite{}).Where("organization_id = ? AND email = ?", org.ID, "new@example.com").Count(&count)
	if count != 1 {
		t.Errorf("expected 1 invite row after replacement, got %d", count)
	}
	if invite.Token == stale.Token {
		t.Error("replacement must carry a fresh token")
	}
}

func TestInviteGetByToken(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleViewer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.GetByToken(invite.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.Organization == nil || got.Organization.ID != org.ID {
		t.Error("organization should be preloaded")
	}

	if _, err := svc.GetByToken("no-such-token"); !response.IsNotFound(err) {
		t.Errorf("unknown token: expected not found, got %v", err)
	}
}

func TestInviteGetByToken_ExpiredRendersNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	db.Model(invite).Update("expires_at", time.Now().Add(-time.Minute))

	if _, err := svc.GetByToken(invite.Token); !response.IsNotFound(err) {
		t.Errorf("expired token: expected not found, got %v", err)
	}
}

func TestInviteAccept(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	invitee := createUser(t, db, "Invitee", "invitee@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: invitee.Email, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	alreadyMember, err := svc.Accept(invite.Token, invitee)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if alreadyMember {
		t.Error("first accept should not report already-member")
	}

	// Membership row at the invited role
	var member models.OrganizationMember
	if err := db.Where("organization_id = ? AND user_id = ?", org.ID, invitee.ID).First(&member).Error; err != nil {
		t.Fatalf("member row missing: %v", err)
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("role = %q, want %q", member.Role, models.RoleAdmin)
	}

	// Invite consumed
	var stored models.OrganizationInvite
	db.First(&stored, invite.ID)
	if stored.AcceptedAt == nil {
		t.Error("accepted_at should be set")
	}
	if _, err := svc.GetByToken(invite.Token); !response.IsNotFound(err) {
		t.Errorf("accepted token should not resolve, got %v", err)
	}
}

func TestInviteAccept_EmailMismatch(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	other := createUser(t, db, "Other", "other@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: "invitee@example.com", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Accept(invite.Token, other); !response.IsForbidden(err) {
		t.Errorf("expected forbidden for email mismatch, got %v", err)
	}

	// Email comparison is exact, including case.
	other.Email = "Invitee@example.com"
	if _, err := svc.Accept(invite.Token, other); !response.IsForbidden(err) {
		t.Errorf("expected forbidden for case-differing email, got %v", err)
	}
}

func TestInviteAccept_AlreadyMemberShortCircuits(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	invitee := createUser(t, db, "Invitee", "invitee@example.com")
	org := createOrg(t, db, "acme", owner)
	addMember(t, db, org, invitee, models.RoleViewer)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: invitee.Email, Role: models.RoleAdmin})
	if err == nil {
		t.Skip("creation rejects existing members; seed the invite directly")
	}

	invite = &models.OrganizationInvite{
		OrganizationID: org.ID,
		SenderID:       owner.ID,
		Email:          invitee.Email,
		Role:           models.RoleAdmin,
		Token:          models.GenerateInviteToken(),
		ExpiresAt:      time.Now().Add(models.InviteTTL),
	}
	if err := db.Create(invite).Error; err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	alreadyMember, err := svc.Accept(invite.Token, invitee)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !alreadyMember {
		t.Error("expected already-member short circuit")
	}

	// The existing role is untouched.
	var member models.OrganizationMember
	db.Where("organization_id = ? AND user_id = ?", org.ID, invitee.ID).First(&member)
	if member.Role != models.RoleViewer {
		t.Errorf("role = %q, existing membership must not change", member.Role)
	}
}

func TestInviteAccept_OwnerNeverGetsMemberRow(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	invite := &models.OrganizationInvite{
		OrganizationID: org.ID,
		SenderID:       owner.ID,
		Email:          owner.Email,
		Role:           models.RoleMember,
		Token:          models.GenerateInviteToken(),
		ExpiresAt:      time.Now().Add(models.InviteTTL),
	}
	if err := db.Create(invite).Error; err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	alreadyMember, err := svc.Accept(invite.Token, owner)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !alreadyMember {
		t.Error("owner accepting an invite should short circuit")
	}

	var count int64
	db.Model(&models.OrganizationMember{}).Where("organization_id = ? AND user_id = ?", org.ID, owner.ID).Count(&count)
	if count != 0 {
		t.Error("owner must never get a membership row")
	}
}

func TestInviteDecline(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Decline(invite.Token); err != nil {
		t.Fatalf("Decline: %v", err)
	}

	// No residue; the email can be invited again.
	var count int64
	db.Model(&models.OrganizationInvite{}).Where("organization_id = ?", org.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected 0 invites after decline, got %d", count)
	}
	if _, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember}); err != nil {
		t.Errorf("re-invite after decline: %v", err)
	}
}

func TestInviteCancel(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	other := createOrg(t, db, "globex", owner)
	svc := NewInviteService(db, nil, nil)

	invite, err := svc.Create(org, owner, &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// An invite id from another organization renders as not found.
	if err := svc.Cancel(other, invite.ID); !response.IsNotFound(err) {
		t.Errorf("cross-org cancel: expected not found, got %v", err)
	}

	if err := svc.Cancel(org, invite.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := svc.Cancel(org, invite.ID); !response.IsNotFound(err) {
		t.Errorf("second cancel: expected not found, got %v", err)
	}
}

func TestInviteListPending(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	a, _ := svc.Create(org, owner, &CreateInviteRequest{Email: "a@example.com", Role: models.RoleMember})
	b, _ := svc.Create(org, owner, &CreateInviteRequest{Email: "b@example.com", Role: models.RoleMember})
	db.Model(b).Update("expires_at", time.Now().Add(-time.Hour))

	invites, err := svc.ListPending(org)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(invites) != 1 || invites[0].ID != a.ID {
		t.Errorf("expected only the live invite, got %d rows", len(invites))
	}
}

func TestInvitePurgeExpired(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Owner", "owner@example.com")
	org := createOrg(t, db, "acme", owner)
	svc := NewInviteService(db, nil, nil)

	fresh, _ := svc.Create(org, owner, &CreateInviteRequest{Email: "fresh@example.com", Role: models.RoleMember})

	old := models.OrganizationInvite{
		OrganizationID: org.ID,
		SenderID:       owner.ID,
		Email:          "old@example.com",
		Role:           models.RoleMember,
		Token:          models.GenerateInviteToken(),
		ExpiresAt:      time.Now().Add(-60 * 24 * time.Hour),
	}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("seed old invite: %v", err)
	}

	purged, err := svc.PurgeExpired(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	if _, err := svc.GetByToken(fresh.Token); err != nil {
		t.Errorf("fresh invite must survive the purge: %v", err)
	}
}
