package services

import (
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/logger"
	"gorm.io/gorm"
)

// ActivityService is the append-only activity recorder and the feed
// reader built on top of it.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// DefaultFeedLimit caps the feed when the caller does not ask for a size.
const DefaultFeedLimit = 50

// Record appends one activity for the acting user. subjectKind/subjectID
// reference the entity the action touched; pass SubjectKindNone and 0 when
// the subject no longer exists (deletions).
func (s *ActivityService) Record(actor *models.User, activityType, description, subjectKind string, subjectID uint, properties map[string]interface{}) (*models.Activity, error) {
	activity := models.Activity{
		UserID:      actor.ID,
		Type:        activityType,
		Description: description,
		SubjectKind: subjectKind,
	}
	if subjectKind != models.SubjectKindNone {
		id := subjectID
		activity.SubjectID = &id
	}
	if err := activity.SetProperties(properties); err != nil {
		return nil, err
	}

	if err := s.db.Create(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// record is the best-effort variant used from entity observers: activities
// are auxiliary, so a failed write is logged and never propagated into the
// primary operation's result.
func (s *ActivityService) record(actor *models.User, activityType, description, subjectKind string, subjectID uint, properties map[string]interface{}) {
	if _, err := s.Record(actor, activityType, description, subjectKind, subjectID, properties); err != nil {
		logger.Warn().Err(err).
			Str("type", activityType).
			Uint("actor", actor.ID).
			Msg("activity record dropped")
	}
}

// FeedItem is one feed entry with its actor preloaded and its subject
// resolved. Subject is *models.Repository, *models.Organization, or nil
// when the subject was deleted or never existed.
type FeedItem struct {
	Activity models.Activity `json:"activity"`
	Subject  interface{}     `json:"subject,omitempty"`
}

// GetFeed computes the activity feed for a user: their own activities plus
// those of everyone they follow, newest first, capped at limit. The feed
// is recomputed on every call; there is no cache to invalidate.
func (s *ActivityService) GetFeed(user *models.User, limit int) ([]FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	var followingIDs []uint
	if err := s.db.Model(&models.Follow{}).
		Where("follower_id = ?", user.ID).
		Pluck("following_id", &followingIDs).Error; err != nil {
		return nil, err
	}
	userIDs := append(followingIDs, user.ID)

	var activities []models.Activity
	if err := s.db.Preload("User").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}

	return s.resolveSubjects(activities)
}

// resolveSubjects batch-loads the referenced repositories and organizations
// and attaches them to the feed items via a switch on the subject kind.
func (s *ActivityService) resolveSubjects(activities []models.Activity) ([]FeedItem, error) {
	var repoIDs, orgIDs []uint
	for _, a := range activities {
		if a.SubjectID == nil {
			continue
		}
		switch a.SubjectKind {
		case models.SubjectKindRepository:
			repoIDs = append(repoIDs, *a.SubjectID)
		case models.SubjectKindOrganization:
			orgIDs = append(orgIDs, *a.SubjectID)
		}
	}

	repos := make(map[uint]*models.Repository)
	if len(repoIDs) > 0 {
		var list []models.Repository
		if err := s.db.Where("id IN ?", repoIDs).Find(&list).Error; err != nil {
			return nil, err
		}
		for i := range list {
			repos[list[i].ID] = &list[i]
		}
	}

	orgs := make(map[uint]*models.Organization)
	if len(orgIDs) > 0 {
		var list []models.Organization
		if err := s.db.Where("id IN ?", orgIDs).Find(&list).Error; err != nil {
			return nil, err
		}
		for i := range list {
			orgs[list[i].ID] = &list[i]
		}
	}

	items := make([]FeedItem, 0, len(activities))
	for _, a := range activities {
		item := FeedItem{Activity: a}
		if a.SubjectID != nil {
			switch a.SubjectKind {
			case models.SubjectKindRepository:
				if repo, ok := repos[*a.SubjectID]; ok {
					item.Subject = repo
				}
			case models.SubjectKindOrganization:
				if org, ok := orgs[*a.SubjectID]; ok {
					item.Subject = org
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}
