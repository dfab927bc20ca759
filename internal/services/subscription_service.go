package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/storage/s3"
	"github.com/kisahtegar/alqowy/internal/validator"
)

type subscriptionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	files     s3.FileStore
	publisher events.EventPublisher
	clock     Clock
}

func NewSubscriptionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, files s3.FileStore, publisher events.EventPublisher, clock Clock) SubscriptionService {
	return &subscriptionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		files:     files,
		publisher: publisher,
		clock:     clock,
	}
}

// SubmitPayment records a pending transaction at the fixed subscription
// price. Users holding active access get ErrAlreadySubscribed. The proof
// image is stored first; a failed upload never leaves a transaction
// behind. Submitting grants nothing until an owner approves.
func (s *subscriptionService) SubmitPayment(ctx context.Context, userID string, proof *FileUpload) (*TransactionResponse, error) {
	if proof == nil {
		return nil, fmt.Errorf("%w: payment proof is required", ErrValidationFailed)
	}
	if errs := s.validator.GetBusinessValidator().ValidateUpload(proof.Size, proof.ContentType, validator.MaxProofSizeBytes); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	exists, err := s.repo.User().ExistsByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	// Checkout is only for users without a live subscription; duplicate
	// pendings are fine, paying twice for the same window is not.
	active, err := s.HasActiveAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrAlreadySubscribed
	}

	proofURL, err := s.files.Upload(ctx, s3.PrefixProofs, proof.Filename, proof.ContentType, proof.Data)
	if err != nil {
		s.logger.Error("proof upload failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrUploadFailed, err.Error())
	}

	transaction := &models.SubscribeTransaction{
		UserID:      userID,
		TotalAmount: models.SubscriptionPrice,
		IsPaid:      false,
		Proof:       proofURL,
	}
	if err := s.repo.Transaction().Create(ctx, nil, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("payment submitted", "user_id", userID, "transaction_id", transaction.ID, "amount", transaction.TotalAmount)
	return s.toTransactionResponse(transaction), nil
}

// ApprovePayment flips a transaction to paid and stamps the subscription
// start date, inside one transaction with the row locked. Approving an
// already-paid transaction re-stamps the start date from now; the last
// approval wins.
func (s *subscriptionService) ApprovePayment(ctx context.Context, transactionID uint) (*TransactionResponse, error) {
	var approved *models.SubscribeTransaction
	startDate := s.clock.Now()

	err := withTransaction(ctx, s.db, func(tx *gorm.DB) error {
		transaction, err := s.repo.Transaction().GetByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to lock transaction: %w", err)
		}

		if err := s.repo.Transaction().MarkPaid(ctx, tx, transaction.ID, startDate); err != nil {
			return fmt.Errorf("failed to mark transaction paid: %w", err)
		}

		transaction.IsPaid = true
		transaction.SubscriptionStartDate = &startDate
		approved = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TopicPaymentApproved, events.PaymentApprovedEvent{
		TransactionID: approved.ID,
		UserID:        approved.UserID,
		StartDate:     startDate,
		OccurredAt:    startDate,
	}); err != nil {
		s.logger.Error("failed to publish payment approved event", "transaction_id", approved.ID, "error", err)
	}

	s.logger.Info("payment approved", "transaction_id", approved.ID, "user_id", approved.UserID, "start_date", startDate)
	return s.toTransactionResponse(approved), nil
}

// HasActiveAccess evaluates the monthly window against the most recently
// updated paid transaction. The window runs from the start date to the
// same day one calendar month later, boundary inclusive; a user with no
// paid transaction has no access.
func (s *subscriptionService) HasActiveAccess(ctx context.Context, userID string) (bool, error) {
	latest, err := s.repo.Transaction().LatestPaidByUser(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load latest paid transaction: %w", err)
	}

	if latest.SubscriptionStartDate == nil {
		// Paid rows always carry a start date; treat a missing one as no access.
		s.logger.Warn("paid transaction without start date", "transaction_id", latest.ID, "user_id", userID)
		return false, nil
	}

	expiry := addCalendarMonth(*latest.SubscriptionStartDate)
	return !s.clock.Now().After(expiry), nil
}

// GateAccess is HasActiveAccess shaped for call sites that want an error
// to bubble straight to the handler.
func (s *subscriptionService) GateAccess(ctx context.Context, userID string) error {
	ok, err := s.HasActiveAccess(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSubscriptionRequired
	}
	return nil
}

func (s *subscriptionService) GetTransaction(ctx context.Context, transactionID uint) (*TransactionResponse, error) {
	transaction, err := s.repo.Transaction().GetByID(ctx, nil, transactionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return s.toTransactionResponse(transaction), nil
}

func (s *subscriptionService) ListTransactions(ctx context.Context, filters repositories.TransactionFilters) (*TransactionListResponse, error) {
	transactions, total, err := s.repo.Transaction().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return s.toTransactionListResponse(transactions, total), nil
}

func (s *subscriptionService) ListUserTransactions(ctx context.Context, userID string) (*TransactionListResponse, error) {
	filters := repositories.TransactionFilters{UserID: &userID}
	transactions, total, err := s.repo.Transaction().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list user transactions: %w", err)
	}
	return s.toTransactionListResponse(transactions, total), nil
}

// addCalendarMonth returns the instant one calendar month after t,
// clamping to the last day when the target month is shorter. Jan 31
// maps to Feb 29 in leap years and Feb 28 otherwise; time.AddDate's
// normalization (Jan 31 + 1 month = Mar 2/3) is exactly what we avoid.
func addCalendarMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, min, sec := t.Clock()
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func (s *subscriptionService) toTransactionResponse(transaction *models.SubscribeTransaction) *TransactionResponse {
	resp := &TransactionResponse{SubscribeTransaction: transaction}
	if transaction.IsPaid && transaction.SubscriptionStartDate != nil {
		expiry := addCalendarMonth(*transaction.SubscriptionStartDate)
		resp.ExpiryDate = &expiry
	}
	return resp
}

func (s *subscriptionService) toTransactionListResponse(transactions []*models.SubscribeTransaction, total int64) *TransactionListResponse {
	resp := &TransactionListResponse{
		Transactions: make([]*TransactionResponse, 0, len(transactions)),
		Total:        total,
	}
	for _, t := range transactions {
		resp.Transactions = append(resp.Transactions, s.toTransactionResponse(t))
	}
	return resp
}
