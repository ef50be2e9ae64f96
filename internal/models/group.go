package models

import (
	"time"
)

// UserGroup links a quiz creator to a group the bot has been added to.
// A creator can be connected to several groups; each row is one connection.
type UserGroup struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_user_group"`
	GroupID    int64     `gorm:"not null;uniqueIndex:idx_user_group"`
	GroupTitle string    `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}
