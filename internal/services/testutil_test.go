package services

import (
	"fmt"
	"testing"

	"github.com/gitfolio/gitfolio/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database for one test. The DSN is
// keyed by the test name so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.OrganizationInvite{},
		&models.Repository{},
		&models.Follow{},
		&models.Activity{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

func createOrg(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Organization {
	t.Helper()
	org := models.Organization{Name: name, Slug: name, OwnerID: owner.ID}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create org %s: %v", name, err)
	}
	return &org
}

func addMember(t *testing.T, db *gorm.DB, org *models.Organization, user *models.User, role string) *models.OrganizationMember {
	t.Helper()
	member := models.OrganizationMember{OrganizationID: org.ID, UserID: user.ID, Role: role}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
	return &member
}
