package models

import (
	"fmt"
	"testing"

	"github.com/gitfolio/gitfolio/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:models_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Organization{}, &Repository{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestOwner_ResolvesUserSide(t *testing.T) {
	db := newTestDB(t)
	user := User{Name: "Ada", Email: "ada@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	repo := Repository{Name: "api", UserID: &user.ID}
	if err := db.Create(&repo).Error; err != nil {
		t.Fatalf("create repo: %v", err)
	}

	// Association not preloaded; Owner loads it lazily.
	owner, err := repo.Owner(db)
	if err != nil {
		t.Fatalf("Owner: %v", err)
	}
	if owner.Kind != OwnerKindUser {
		t.Errorf("kind = %q", owner.Kind)
	}
	if owner.User == nil || owner.User.ID != user.ID {
		t.Error("owner should resolve to the creating user")
	}
	if owner.Organization != nil {
		t.Error("the unmatched union field must stay nil")
	}
	if owner.Name() != "Ada" {
		t.Errorf("Name() = %q", owner.Name())
	}
}

func TestOwner_ResolvesOrganizationSide(t *testing.T) {
	db := newTestDB(t)
	user := User{Name: "Ada", Email: "ada@example.com"}
	db.Create(&user)
	org := Organization{Name: "Acme", Slug: "acme", OwnerID: user.ID}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create org: %v", err)
	}
	repo := Repository{Name: "infra", OrganizationID: &org.ID}
	if err := db.Create(&repo).Error; err != nil {
		t.Fatalf("create repo: %v", err)
	}

	owner, err := repo.Owner(db)
	if err != nil {
		t.Fatalf("Owner: %v", err)
	}
	if owner.Kind != OwnerKindOrganization {
		t.Errorf("kind = %q", owner.Kind)
	}
	if owner.Name() != "Acme" {
		t.Errorf("Name() = %q", owner.Name())
	}

	name, err := repo.OwnerName(db)
	if err != nil || name != "Acme" {
		t.Errorf("OwnerName = %q, %v", name, err)
	}
}

func TestOwner_FailsFastOnBrokenOwnership(t *testing.T) {
	db := newTestDB(t)
	id := uint(1)

	assertInvariant := func(name string, err error) {
		t.Helper()
		appErr, ok := err.(*response.AppError)
		if !ok || appErr.HTTPStatus != 500 {
			t.Errorf("%s: expected an invariant-violation error, got %v", name, err)
		}
	}

	both := Repository{ID: 10, Name: "both", UserID: &id, OrganizationID: &id}
	_, err := both.Owner(db)
	assertInvariant("both owners set", err)

	neither := Repository{ID: 11, Name: "neither"}
	_, err = neither.Owner(db)
	assertInvariant("no owner set", err)
}
