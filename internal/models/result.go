package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// QuizResult accumulates one participant's answer counts for one quiz run.
// Counters only ever grow; rows are never deleted by the bot.
type QuizResult struct {
	ID             uint      `gorm:"primaryKey"`
	QuizID         int64     `gorm:"not null;uniqueIndex:idx_quiz_user_group"`
	UserID         int64     `gorm:"not null;uniqueIndex:idx_quiz_user_group"`
	GroupID        int64     `gorm:"not null;uniqueIndex:idx_quiz_user_group"`
	CorrectAnswers int       `gorm:"not null;default:0"`
	TotalAnswers   int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

func (r *QuizResult) BeforeSave(_ *gorm.DB) error {
	if r.CorrectAnswers < 0 || r.TotalAnswers < 0 {
		return fmt.Errorf("answer counters must be non-negative")
	}
	if r.CorrectAnswers > r.TotalAnswers {
		return fmt.Errorf("correct answers cannot exceed total answers")
	}
	return nil
}
