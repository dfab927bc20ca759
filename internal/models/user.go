package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleOwner   UserRole = "owner"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether r is one of the three roles the platform knows about.
func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User holds the local profile for an identity resolved by Casdoor.
// Role is a single enum column: a user carries exactly one of
// owner/teacher/student at any time, and every transition is an atomic
// compare-and-set on this column. An empty role means the account has
// been provisioned but registration has not completed yet.
type User struct {
	ID         string   `json:"id" gorm:"primaryKey;size:255"`
	Name       string   `json:"name" gorm:"not null;size:100"`
	Email      string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role       UserRole `json:"role" gorm:"size:20;index"`
	Occupation *string  `json:"occupation" gorm:"size:100"`
	Avatar     *string  `json:"avatar" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	TeacherProfile        *Teacher               `json:"teacher_profile,omitempty" gorm:"foreignKey:UserID"`
	SubscribeTransactions []SubscribeTransaction `json:"-" gorm:"foreignKey:UserID"`
	Courses               []Course               `json:"-" gorm:"many2many:course_students"`
}

func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user currently holds the given role.
func (u *User) HasRole(role UserRole) bool {
	return u.Role == role
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}
