package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gitfolio/gitfolio/internal/config"
	"github.com/gitfolio/gitfolio/internal/models"
)

func inviteFixture() (*models.OrganizationInvite, *models.Organization, *models.User) {
	sender := &models.User{ID: 1, Name: "Ada", Email: "ada@example.com"}
	org := &models.Organization{ID: 2, Name: "Acme", Description: "widgets", OwnerID: 1}
	invite := &models.OrganizationInvite{
		OrganizationID: 2,
		SenderID:       1,
		Email:          "new@example.com",
		Role:           models.RoleMember,
		Token:          models.GenerateInviteToken(),
		ExpiresAt:      time.Now().Add(models.InviteTTL),
	}
	return invite, org, sender
}

func TestBuildInviteTask(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "https://gitfolio.example.com/"},
		SMTP:   config.SMTPConfig{Enabled: true, Host: "smtp.example.com", Port: 587, From: "noreply@example.com"},
	}
	svc := NewEmailService(cfg)
	invite, org, sender := inviteFixture()

	task := svc.BuildInviteTask(invite, org, sender)
	if task == nil {
		t.Fatal("expected a task with SMTP enabled")
	}

	if len(task.To) != 1 || task.To[0] != "new@example.com" {
		t.Errorf("to = %v", task.To)
	}
	shouldContain := []string{
		"Acme",
		"Ada",
		"member",
		"https://gitfolio.example.com/invites/" + invite.Token,
	}
	for _, want := range shouldContain {
		if !strings.Contains(task.Body, want) && !strings.Contains(task.Subject, want) {
			t.Errorf("mail should mention %q", want)
		}
	}
}

func TestBuildInviteTask_DisabledIsNil(t *testing.T) {
	svc := NewEmailService(&config.Config{})
	invite, org, sender := inviteFixture()

	if task := svc.BuildInviteTask(invite, org, sender); task != nil {
		t.Error("disabled SMTP must produce no task")
	}
}

func TestTaskTypeEmail_Constant(t *testing.T) {
	if TaskTypeEmail != "email:send" {
		t.Errorf("TaskTypeEmail = %q, expected %q", TaskTypeEmail, "email:send")
	}
}

func TestSyncQueue_ProcessesInBackground(t *testing.T) {
	queue := NewSyncQueue()

	var (
		mu  sync.Mutex
		got *EmailTask
	)
	done := make(chan struct{})
	queue.SetProcessor(func(ctx context.Context, task *EmailTask) error {
		mu.Lock()
		got = task
		mu.Unlock()
		close(done)
		return nil
	})

	task := &EmailTask{To: []string{"a@example.com"}, Subject: "hi", Body: "body"}
	if err := queue.Enqueue(task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.Subject != "hi" {
		t.Errorf("processed subject = %q", got.Subject)
	}
	if queue.IsAsync() {
		t.Error("sync queue reports async")
	}
}

func TestSyncQueue_NoProcessorDropsTask(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Enqueue(&EmailTask{To: []string{"a@example.com"}}); err != nil {
		t.Errorf("enqueue without processor should not error: %v", err)
	}
	if err := queue.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
