package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/storage/s3"
	"github.com/kisahtegar/alqowy/internal/validator"
)

func newTestSubscriptionService(st *mockStore, clock Clock) SubscriptionService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSubscriptionService(newMockRepository(st), nil, logger, validator.NewValidator(), s3.NewMockFileStore(), events.NewMockEventPublisher(), clock)
}

func validProof() *FileUpload {
	return &FileUpload{
		Filename:    "proof.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		Data:        []byte("fake image bytes"),
	}
}

func TestSubscriptionService_SubmitPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending transaction at the fixed price", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		svc := newTestSubscriptionService(st, NewRealClock())

		resp, err := svc.SubmitPayment(ctx, "u1", validProof())
		if err != nil {
			t.Fatalf("SubmitPayment: %v", err)
		}

		if resp.TotalAmount != models.SubscriptionPrice {
			t.Errorf("amount = %d, want %d", resp.TotalAmount, models.SubscriptionPrice)
		}
		if resp.IsPaid {
			t.Error("submitted payment must start unpaid")
		}
		if resp.SubscriptionStartDate != nil {
			t.Error("submitted payment must not carry a start date")
		}
		if resp.Proof == "" {
			t.Error("proof URL missing")
		}

		// Submitting grants nothing.
		ok, err := svc.HasActiveAccess(ctx, "u1")
		if err != nil {
			t.Fatalf("HasActiveAccess: %v", err)
		}
		if ok {
			t.Error("pending payment must not grant access")
		}
	})

	t.Run("rejects missing proof", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		svc := newTestSubscriptionService(st, NewRealClock())

		if _, err := svc.SubmitPayment(ctx, "u1", nil); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("err = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("rejects oversized proof", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		svc := newTestSubscriptionService(st, NewRealClock())

		proof := validProof()
		proof.Size = validator.MaxProofSizeBytes + 1
		if _, err := svc.SubmitPayment(ctx, "u1", proof); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("err = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		st := newMockStore()
		svc := newTestSubscriptionService(st, NewRealClock())

		if _, err := svc.SubmitPayment(ctx, "ghost", validProof()); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("err = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("rejects a user with active access", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		tx := &models.SubscribeTransaction{
			UserID:                "u1",
			TotalAmount:           models.SubscriptionPrice,
			IsPaid:                true,
			Proof:                 "https://storage.test/proofs/p.jpg",
			SubscriptionStartDate: &start,
		}
		if err := newMockRepository(st).Transaction().Create(ctx, nil, tx); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}

		svc := newTestSubscriptionService(st, FixedClock{Instant: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)})
		if _, err := svc.SubmitPayment(ctx, "u1", validProof()); !errors.Is(err, ErrAlreadySubscribed) {
			t.Errorf("err = %v, want ErrAlreadySubscribed", err)
		}

		// The expired window reopens checkout.
		svcLater := newTestSubscriptionService(st, FixedClock{Instant: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
		if _, err := svcLater.SubmitPayment(ctx, "u1", validProof()); err != nil {
			t.Errorf("expired subscription must allow checkout again: %v", err)
		}
	})
}

func TestSubscriptionService_ApprovePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps start date from approval time", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		approvedAt := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		svc := newTestSubscriptionService(st, FixedClock{Instant: approvedAt})

		submitted, err := svc.SubmitPayment(ctx, "u1", validProof())
		if err != nil {
			t.Fatalf("SubmitPayment: %v", err)
		}

		resp, err := svc.ApprovePayment(ctx, submitted.ID)
		if err != nil {
			t.Fatalf("ApprovePayment: %v", err)
		}

		if !resp.IsPaid {
			t.Error("approved payment must be paid")
		}
		if resp.SubscriptionStartDate == nil || !resp.SubscriptionStartDate.Equal(approvedAt) {
			t.Errorf("start date = %v, want %v", resp.SubscriptionStartDate, approvedAt)
		}
		want := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
		if resp.ExpiryDate == nil || !resp.ExpiryDate.Equal(want) {
			t.Errorf("expiry = %v, want %v", resp.ExpiryDate, want)
		}
	})

	t.Run("re-approval re-stamps the start date", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		svc := newTestSubscriptionService(st, FixedClock{Instant: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})

		submitted, err := svc.SubmitPayment(ctx, "u1", validProof())
		if err != nil {
			t.Fatalf("SubmitPayment: %v", err)
		}
		if _, err := svc.ApprovePayment(ctx, submitted.ID); err != nil {
			t.Fatalf("first ApprovePayment: %v", err)
		}

		later := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		svcLater := newTestSubscriptionService(st, FixedClock{Instant: later})
		resp, err := svcLater.ApprovePayment(ctx, submitted.ID)
		if err != nil {
			t.Fatalf("second ApprovePayment: %v", err)
		}
		if resp.SubscriptionStartDate == nil || !resp.SubscriptionStartDate.Equal(later) {
			t.Errorf("start date = %v, want re-stamped %v", resp.SubscriptionStartDate, later)
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		st := newMockStore()
		svc := newTestSubscriptionService(st, NewRealClock())

		if _, err := svc.ApprovePayment(ctx, 99); !errors.Is(err, ErrTransactionNotFound) {
			t.Errorf("err = %v, want ErrTransactionNotFound", err)
		}
	})
}

func TestSubscriptionService_HasActiveAccess(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	seedPaid := func(st *mockStore, userID string, startDate time.Time) *models.SubscribeTransaction {
		t := &models.SubscribeTransaction{
			UserID:                userID,
			TotalAmount:           models.SubscriptionPrice,
			IsPaid:                true,
			Proof:                 "https://storage.test/proofs/p.jpg",
			SubscriptionStartDate: &startDate,
		}
		repo := newMockRepository(st)
		if err := repo.Transaction().Create(ctx, nil, t); err != nil {
			panic(err)
		}
		return t
	}

	t.Run("boundary instant is still active", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		seedPaid(st, "u1", start)

		svc := newTestSubscriptionService(st, FixedClock{Instant: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)})
		ok, err := svc.HasActiveAccess(ctx, "u1")
		if err != nil {
			t.Fatalf("HasActiveAccess: %v", err)
		}
		if !ok {
			t.Error("access at the expiry instant must be active (inclusive boundary)")
		}
	})

	t.Run("one second past the boundary is expired", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		seedPaid(st, "u1", start)

		svc := newTestSubscriptionService(st, FixedClock{Instant: time.Date(2024, 2, 15, 0, 0, 1, 0, time.UTC)})
		ok, err := svc.HasActiveAccess(ctx, "u1")
		if err != nil {
			t.Fatalf("HasActiveAccess: %v", err)
		}
		if ok {
			t.Error("access past the expiry instant must be inactive")
		}
	})

	t.Run("no paid transaction means no access", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)

		svc := newTestSubscriptionService(st, NewRealClock())
		ok, err := svc.HasActiveAccess(ctx, "u1")
		if err != nil {
			t.Fatalf("HasActiveAccess: %v", err)
		}
		if ok {
			t.Error("user without payments must have no access")
		}
	})

	t.Run("most recently updated paid transaction wins", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)

		// Old window long expired, fresh window still open.
		ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		st.now = func() time.Time { ts = ts.Add(time.Hour); return ts }
		seedPaid(st, "u1", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
		seedPaid(st, "u1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

		svc := newTestSubscriptionService(st, FixedClock{Instant: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)})
		ok, err := svc.HasActiveAccess(ctx, "u1")
		if err != nil {
			t.Fatalf("HasActiveAccess: %v", err)
		}
		if !ok {
			t.Error("latest paid transaction should define the window")
		}
	})

	t.Run("gate translates no access into sentinel", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)

		svc := newTestSubscriptionService(st, NewRealClock())
		if err := svc.GateAccess(ctx, "u1"); !errors.Is(err, ErrSubscriptionRequired) {
			t.Errorf("err = %v, want ErrSubscriptionRequired", err)
		}
	})
}

func TestAddCalendarMonth(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{
			name:  "mid month",
			start: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "jan 31 clamps to feb 29 in a leap year",
			start: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "jan 31 clamps to feb 28 otherwise",
			start: time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "dec rolls into january",
			start: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "preserves time of day",
			start: time.Date(2024, 5, 10, 13, 45, 30, 0, time.UTC),
			want:  time.Date(2024, 6, 10, 13, 45, 30, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := addCalendarMonth(tt.start); !got.Equal(tt.want) {
				t.Errorf("addCalendarMonth(%v) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}
