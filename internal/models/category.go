package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups courses on the catalog. Slug is derived from the name
// and used for front-facing lookups.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:255"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	Icon *string `json:"icon" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}
