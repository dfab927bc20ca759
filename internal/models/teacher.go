package models

import (
	"time"

	"gorm.io/gorm"
)

// Teacher is the role-extension record created when an owner promotes a
// user. It exists iff the owning user's role is "teacher"; promotion and
// demotion keep the record and the role column in step inside one
// transaction. The unique index on UserID is partial over live rows:
// demotion soft-deletes, and the retired row must not block a later
// re-promotion of the same user.
type Teacher struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"uniqueIndex:uniq_teachers_live_user,where:deleted_at IS NULL;not null;size:255"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User    User     `json:"user" gorm:"foreignKey:UserID"`
	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:TeacherID"`
}

func (Teacher) TableName() string {
	return "teachers"
}
