package repositories

import (
	"github.com/quizhost/quiz_bot/internal/models"
	"github.com/quizhost/quiz_bot/internal/quiz"
	"github.com/quizhost/quiz_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// IncrementScore bumps the participant's counters for one answered question.
// The increment is a single upsert so concurrent answers never lose updates.
func (r *ResultRepository) IncrementScore(quizID, userID, groupID int64, wasCorrect bool) error {
	correctDelta := 0
	if wasCorrect {
		correctDelta = 1
	}

	row := &models.QuizResult{
		QuizID:         quizID,
		UserID:         userID,
		GroupID:        groupID,
		CorrectAnswers: correctDelta,
		TotalAnswers:   1,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "quiz_id"}, {Name: "user_id"}, {Name: "group_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"correct_answers": gorm.Expr("quiz_results.correct_answers + ?", correctDelta),
			"total_answers":   gorm.Expr("quiz_results.total_answers + 1"),
		}),
	}).Create(row).Error

	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "failed to increment score")
	}

	return nil
}

// FetchLeaderboardRows returns the quiz standings, best score first; equal
// scores rank the player with fewer total answers higher.
func (r *ResultRepository) FetchLeaderboardRows(quizID, groupID int64, limit int) ([]quiz.Row, error) {
	var rows []quiz.Row
	result := r.db.Model(&models.QuizResult{}).
		Select("user_id, correct_answers AS correct_count, total_answers AS total_count").
		Where("quiz_id = ? AND group_id = ?", quizID, groupID).
		Order("correct_answers DESC, total_answers ASC, id ASC").
		Limit(limit).
		Scan(&rows)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodePersistence, "failed to fetch leaderboard rows")
	}

	return rows, nil
}
