package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	clock  Clock
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, clock Clock) ReportService {
	return &reportService{
		repo:   repo,
		db:     db,
		logger: logger,
		clock:  clock,
	}
}

var transactionReportHeader = []string{
	"ID", "User", "Email", "Amount", "Status", "Subscription Start", "Submitted At",
}

// ExportTransactions renders the transaction list as an XLSX workbook
// and returns the bytes plus a timestamped filename.
func (s *reportService) ExportTransactions(ctx context.Context, filters repositories.TransactionFilters) ([]byte, string, error) {
	transactions, _, err := s.repo.Transaction().List(ctx, nil, filters)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range transactionReportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, transaction := range transactions {
		row := i + 2

		status := "pending"
		if transaction.IsPaid {
			status = "paid"
		}
		start := ""
		if transaction.SubscriptionStartDate != nil {
			start = transaction.SubscriptionStartDate.Format(time.RFC3339)
		}

		values := []interface{}{
			transaction.ID,
			transaction.User.Name,
			transaction.User.Email,
			transaction.TotalAmount,
			status,
			start,
			transaction.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, "", fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", s.clock.Now().Format("20060102-150405"))
	s.logger.Info("transaction report exported", "rows", len(transactions), "filename", filename)
	return buf.Bytes(), filename, nil
}
