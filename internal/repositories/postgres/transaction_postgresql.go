package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

type TransactionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTransactionPostgreSQL(db *gorm.DB) repositories.SubscribeTransactionRepository {
	return &TransactionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (t *TransactionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, transaction *models.SubscribeTransaction) error {
	if err := getDB(t.db, tx).WithContext(ctx).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (t *TransactionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SubscribeTransaction, error) {
	var transaction models.SubscribeTransaction
	err := getDB(t.db, tx).WithContext(ctx).
		Preload("User").
		First(&transaction, id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// GetByIDForUpdate must run inside a transaction; the row lock is what
// serializes concurrent approvals.
func (t *TransactionPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.SubscribeTransaction, error) {
	var transaction models.SubscribeTransaction
	err := getDB(t.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transaction, id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (t *TransactionPostgreSQL) MarkPaid(ctx context.Context, tx *gorm.DB, id uint, startDate time.Time) error {
	result := getDB(t.db, tx).WithContext(ctx).
		Model(&models.SubscribeTransaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paid":                 true,
			"subscription_start_date": startDate,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark transaction paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LatestPaidByUser picks the row that defines the access window. Ordering
// is updated_at desc with id desc as the tie-break so the result is stable
// when two rows share a timestamp.
func (t *TransactionPostgreSQL) LatestPaidByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.SubscribeTransaction, error) {
	var transaction models.SubscribeTransaction
	err := getDB(t.db, tx).WithContext(ctx).
		Where("user_id = ? AND is_paid = ?", userID, true).
		Order("updated_at DESC, id DESC").
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (t *TransactionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TransactionFilters) ([]*models.SubscribeTransaction, int64, error) {
	query := getDB(t.db, tx).WithContext(ctx).Model(&models.SubscribeTransaction{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.IsPaid != nil {
		query = query.Where("is_paid = ?", *filters.IsPaid)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	listQuery := query.Preload("User").Order("id desc")
	// Limit <= 0 means unpaginated; the report export reads the full set.
	if filters.Limit > 0 {
		listQuery = t.helpers.ApplyPagination(listQuery, filters.Limit, filters.Offset)
	}

	var transactions []*models.SubscribeTransaction
	err := listQuery.Find(&transactions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}
