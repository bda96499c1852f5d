package services

import (
	"testing"
	"time"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/response"
)

func TestNotificationMarkRead_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := createUser(t, db, "User", "user@example.com")

	created, err := svc.Create(user.ID, models.NotificationUserFollow, "hello", "", nil, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.MarkRead(user, created.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if first.ReadAt == nil {
		t.Fatal("read_at should be set")
	}

	stamp := *first.ReadAt
	time.Sleep(10 * time.Millisecond)

	second, err := svc.MarkRead(user, created.ID)
	if err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if !second.ReadAt.Equal(stamp) {
		t.Error("re-reading must keep the original read timestamp")
	}
}

func TestNotificationMarkUnread(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := createUser(t, db, "User", "user@example.com")

	created, _ := svc.Create(user.ID, models.NotificationOrgInvite, "invited", "", nil, "")
	if _, err := svc.MarkRead(user, created.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	back, err := svc.MarkUnread(user, created.ID)
	if err != nil {
		t.Fatalf("MarkUnread: %v", err)
	}
	if back.ReadAt != nil {
		t.Error("read_at should be cleared")
	}
}

func TestNotificationMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := createUser(t, db, "User", "user@example.com")

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(user.ID, models.NotificationUserFollow, "hi", "", nil, ""); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	one, _ := svc.Create(user.ID, models.NotificationUserFollow, "hi", "", nil, "")
	svc.MarkRead(user, one.ID)

	updated, err := svc.MarkAllRead(user)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3 (already-read row untouched)", updated)
	}

	unread, _ := svc.UnreadCount(user)
	if unread != 0 {
		t.Errorf("unread = %d, want 0", unread)
	}
}

func TestNotificationAccessControl(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	owner := createUser(t, db, "Owner", "owner@example.com")
	intruder := createUser(t, db, "Intruder", "intruder@example.com")

	created, _ := svc.Create(owner.ID, models.NotificationUserFollow, "hi", "", nil, "")

	if _, err := svc.MarkRead(intruder, created.ID); !response.IsForbidden(err) {
		t.Errorf("foreign mark-read: expected forbidden, got %v", err)
	}
	if err := svc.Delete(intruder, created.ID); !response.IsForbidden(err) {
		t.Errorf("foreign delete: expected forbidden, got %v", err)
	}
	if _, err := svc.MarkRead(owner, 9999); !response.IsNotFound(err) {
		t.Errorf("missing id: expected not found, got %v", err)
	}
}

func TestNotificationList_Filters(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := createUser(t, db, "User", "user@example.com")

	a, _ := svc.Create(user.ID, models.NotificationUserFollow, "a", "", nil, "")
	svc.Create(user.ID, models.NotificationUserFollow, "b", "", nil, "")
	svc.MarkRead(user, a.ID)

	read, err := svc.List(user, &NotificationListRequest{Filter: "read"})
	if err != nil {
		t.Fatalf("List read: %v", err)
	}
	if read.Total != 1 {
		t.Errorf("read total = %d, want 1", read.Total)
	}

	unread, err := svc.List(user, &NotificationListRequest{Filter: "unread"})
	if err != nil {
		t.Fatalf("List unread: %v", err)
	}
	if unread.Total != 1 || unread.UnreadCount != 1 {
		t.Errorf("unread total = %d unread_count = %d, want 1/1", unread.Total, unread.UnreadCount)
	}
}

func TestNotificationDataBag(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := createUser(t, db, "User", "user@example.com")

	created, err := svc.Create(user.ID, models.NotificationUserFollow, "hi", "",
		map[string]interface{}{"follower": map[string]interface{}{"id": float64(7), "name": "Bob"}}, "/users/7")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	data, err := created.GetData()
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	follower, ok := data["follower"].(map[string]interface{})
	if !ok || follower["name"] != "Bob" {
		t.Errorf("data bag round trip failed: %v", data)
	}
}
