package repositories

import (
	"github.com/quizhost/quiz_bot/internal/models"
	"github.com/quizhost/quiz_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// RecordGroup remembers that the user connected the bot to a group.
// Re-adding the same group refreshes the stored title.
func (r *GroupRepository) RecordGroup(userID, groupID int64, groupTitle string) error {
	group := &models.UserGroup{
		UserID:     userID,
		GroupID:    groupID,
		GroupTitle: groupTitle,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"group_title", "updated_at"}),
	}).Create(group).Error

	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "failed to record group")
	}

	return nil
}

// ListGroups returns all groups the user has connected, oldest first.
func (r *GroupRepository) ListGroups(userID int64) ([]models.UserGroup, error) {
	var groups []models.UserGroup
	result := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&groups)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodePersistence, "failed to list groups")
	}

	return groups, nil
}

// RemoveGroup forgets a group for every user, used when the bot is kicked.
func (r *GroupRepository) RemoveGroup(groupID int64) error {
	result := r.db.Where("group_id = ?", groupID).Delete(&models.UserGroup{})

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodePersistence, "failed to remove group")
	}

	return nil
}
