package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
)

// SubscribeTransactionRepository stores payment records. MarkPaid is the
// only write path that flips IsPaid; everything else is reads plus the
// pending-row insert.
type SubscribeTransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, transaction *models.SubscribeTransaction) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SubscribeTransaction, error)
	// GetByIDForUpdate locks the row (SELECT ... FOR UPDATE) so concurrent
	// approvals of the same transaction serialize.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.SubscribeTransaction, error)

	// MarkPaid sets is_paid=true and stamps the subscription start date.
	// Calling it on an already-paid row re-stamps the date only.
	MarkPaid(ctx context.Context, tx *gorm.DB, id uint, startDate time.Time) error

	// LatestPaidByUser returns the paid transaction that currently defines
	// the user's access window: ordered by updated_at desc with id desc as
	// the tie-break. Not-found is returned as the storage layer's
	// record-not-found error.
	LatestPaidByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.SubscribeTransaction, error)

	List(ctx context.Context, tx *gorm.DB, filters TransactionFilters) ([]*models.SubscribeTransaction, int64, error)
}

// DashboardRepository serves the admin dashboard counters.
type DashboardRepository interface {
	GetStats(ctx context.Context, tx *gorm.DB, teacherID *uint) (*DashboardStats, error)
}
