package events

import "time"

// Topics carried over Kafka. One topic per business fact; payloads below.
const (
	TopicUserRegistered  = "alqowy.user.registered"
	TopicTeacherPromoted = "alqowy.teacher.promoted"
	TopicTeacherDemoted  = "alqowy.teacher.demoted"
	TopicPaymentApproved = "alqowy.payment.approved"
)

// UserRegisteredEvent fires when a Casdoor identity is seen for the first
// time and a local profile is provisioned. The registration subscriber
// reacts by assigning the default student role.
type UserRegisteredEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TeacherPromotedEvent struct {
	UserID     string    `json:"user_id"`
	TeacherID  uint      `json:"teacher_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TeacherDemotedEvent struct {
	UserID     string    `json:"user_id"`
	TeacherID  uint      `json:"teacher_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentApprovedEvent fires when an owner approves a pending transaction.
// Downstream consumers (receipts, notifications) key off the start date.
type PaymentApprovedEvent struct {
	TransactionID uint      `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	StartDate     time.Time `json:"start_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}
