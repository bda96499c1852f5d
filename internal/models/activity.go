package models

import (
	"encoding/json"
	"time"
)

// Activity types recorded by the observers on entity writes.
const (
	ActivityRepositoryCreated   = "repository_created"
	ActivityRepositoryUpdated   = "repository_updated"
	ActivityRepositoryDeleted   = "repository_deleted"
	ActivityOrganizationCreated = "organization_created"
	ActivityOrganizationUpdated = "organization_updated"
	ActivityOrganizationDeleted = "organization_deleted"
)

// Subject kinds for the tagged subject reference. Deleted subjects are
// recorded with SubjectKindNone since the entity no longer exists.
const (
	SubjectKindNone         = ""
	SubjectKindRepository   = "repository"
	SubjectKindOrganization = "organization"
)

// Activity is one append-only record of a state-changing action performed
// by a user. Rows are never updated or deleted except by cascading actor
// deletion; the feed is computed from them on every read.
type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type        string    `gorm:"size:100;index;not null" json:"type"`
	Description string    `gorm:"size:500" json:"description"`
	SubjectKind string    `gorm:"size:50" json:"subject_kind"` // repository, organization or empty
	SubjectID   *uint     `json:"subject_id"`
	Properties  string    `gorm:"type:text" json:"-"` // JSON bag for display
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Activity) TableName() string { return "activities" }

// SetProperties marshals the given bag into the JSON column.
func (a *Activity) SetProperties(props map[string]interface{}) error {
	if props == nil {
		a.Properties = ""
		return nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return err
	}
	a.Properties = string(data)
	return nil
}

// GetProperties unmarshals the JSON column; an empty column yields nil.
func (a *Activity) GetProperties() (map[string]interface{}, error) {
	if a.Properties == "" {
		return nil, nil
	}
	var props map[string]interface{}
	if err := json.Unmarshal([]byte(a.Properties), &props); err != nil {
		return nil, err
	}
	return props, nil
}
