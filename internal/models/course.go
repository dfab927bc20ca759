package models

import (
	"time"

	"gorm.io/gorm"
)

// Course is the gated content unit: reachable on the catalog by anyone,
// watchable only with an active subscription or a staff role.
type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:255"`
	Slug        string  `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	About       string  `json:"about" gorm:"type:text"`
	PathTrailer string  `json:"path_trailer" gorm:"size:255"`
	Thumbnail   *string `json:"thumbnail" gorm:"size:500"`
	TeacherID   uint    `json:"teacher_id" gorm:"not null;index"`
	CategoryID  uint    `json:"category_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Teacher   Teacher          `json:"teacher" gorm:"foreignKey:TeacherID"`
	Category  Category         `json:"category" gorm:"foreignKey:CategoryID"`
	Videos    []CourseVideo    `json:"videos,omitempty" gorm:"foreignKey:CourseID"`
	Keypoints []CourseKeypoint `json:"keypoints,omitempty" gorm:"foreignKey:CourseID"`
	Students  []User           `json:"-" gorm:"many2many:course_students"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseVideo struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:255"`
	PathVideo string `json:"path_video" gorm:"not null;size:255"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (CourseVideo) TableName() string {
	return "course_videos"
}

type CourseKeypoint struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:255"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (CourseKeypoint) TableName() string {
	return "course_keypoints"
}
