package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionPrice is the fixed monthly price, in the platform currency's
// smallest unit. Every transaction is created with this amount.
const SubscriptionPrice int64 = 429000

// SubscribeTransaction is a payment record submitted by a student.
//
// Lifecycle: Pending {IsPaid=false, SubscriptionStartDate=nil} moves to
// Paid {IsPaid=true, SubscriptionStartDate=approval time} exactly once,
// through the admin approval path, and never back. Pending rows that are
// never approved stay inert. Access checks look only at the most recently
// updated paid row (updated_at desc, id desc as tie-break).
type SubscribeTransaction struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	UserID                string     `json:"user_id" gorm:"not null;index;size:255"`
	TotalAmount           int64      `json:"total_amount" gorm:"not null"`
	IsPaid                bool       `json:"is_paid" gorm:"not null;default:false;index"`
	Proof                 string     `json:"proof" gorm:"not null;size:500"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (SubscribeTransaction) TableName() string {
	return "subscribe_transactions"
}
