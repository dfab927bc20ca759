package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/validator"
)

func newTestRoleService(st *mockStore, publisher events.EventPublisher) RoleService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRoleService(newMockRepository(st), nil, logger, validator.NewValidator(), publisher, NewRealClock())
}

func TestRoleService_AssignDefaultRole(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns student to fresh user", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", "")
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		if err := svc.AssignDefaultRole(ctx, "u1"); err != nil {
			t.Fatalf("AssignDefaultRole: %v", err)
		}
		if got := st.users["u1"].Role; got != models.RoleStudent {
			t.Errorf("role = %q, want %q", got, models.RoleStudent)
		}
	})

	t.Run("redelivery reports already assigned", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		if err := svc.AssignDefaultRole(ctx, "u1"); !errors.Is(err, ErrAlreadyHasRole) {
			t.Errorf("err = %v, want ErrAlreadyHasRole", err)
		}
		if got := st.users["u1"].Role; got != models.RoleStudent {
			t.Errorf("role = %q, want %q", got, models.RoleStudent)
		}
	})

	t.Run("never downgrades an existing role", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleTeacher)
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		if err := svc.AssignDefaultRole(ctx, "u1"); !errors.Is(err, ErrAlreadyHasRole) {
			t.Errorf("err = %v, want ErrAlreadyHasRole", err)
		}
		if got := st.users["u1"].Role; got != models.RoleTeacher {
			t.Errorf("role = %q, want %q", got, models.RoleTeacher)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		st := newMockStore()
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		if err := svc.AssignDefaultRole(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("err = %v, want ErrUserNotFound", err)
		}
	})
}

func TestRoleService_PromoteToTeacher(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes a student", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		publisher := events.NewMockEventPublisher()
		svc := newTestRoleService(st, publisher)

		resp, err := svc.PromoteToTeacher(ctx, &CreateTeacherRequest{Email: "alice@example.com"})
		if err != nil {
			t.Fatalf("PromoteToTeacher: %v", err)
		}

		if got := st.users["u1"].Role; got != models.RoleTeacher {
			t.Errorf("role = %q, want %q", got, models.RoleTeacher)
		}
		if resp.UserID != "u1" || !resp.IsActive {
			t.Errorf("unexpected teacher record: %+v", resp.Teacher)
		}
		if len(st.teachers) != 1 {
			t.Fatalf("teacher records = %d, want 1", len(st.teachers))
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Topic != events.TopicTeacherPromoted {
			t.Errorf("published = %+v, want one teacher promoted event", published)
		}
	})

	t.Run("rejects a user who is already a teacher", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleTeacher)
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		_, err := svc.PromoteToTeacher(ctx, &CreateTeacherRequest{Email: "alice@example.com"})
		if !errors.Is(err, ErrAlreadyTeacher) {
			t.Errorf("err = %v, want ErrAlreadyTeacher", err)
		}
	})

	t.Run("rejects promoting the owner", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Root", "owner@example.com", models.RoleOwner)
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		_, err := svc.PromoteToTeacher(ctx, &CreateTeacherRequest{Email: "owner@example.com"})
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("err = %v, want ErrValidationFailed", err)
		}
		if got := st.users["u1"].Role; got != models.RoleOwner {
			t.Errorf("owner role changed to %q", got)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		st := newMockStore()
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		_, err := svc.PromoteToTeacher(ctx, &CreateTeacherRequest{Email: "ghost@example.com"})
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("err = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("invalid email fails validation", func(t *testing.T) {
		st := newMockStore()
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		_, err := svc.PromoteToTeacher(ctx, &CreateTeacherRequest{Email: "not-an-email"})
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("err = %v, want ErrValidationFailed", err)
		}
	})
}

func TestRoleService_DemoteTeacher(t *testing.T) {
	ctx := context.Background()

	t.Run("demote reverses promote", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleStudent)
		publisher := events.NewMockEventPublisher()
		svc := newTestRoleService(st, publisher)

		resp, err := svc.PromoteToTeacher(ctx, &CreateTeacherRequest{Email: "alice@example.com"})
		if err != nil {
			t.Fatalf("PromoteToTeacher: %v", err)
		}

		if err := svc.DemoteTeacher(ctx, resp.ID); err != nil {
			t.Fatalf("DemoteTeacher: %v", err)
		}

		if got := st.users["u1"].Role; got != models.RoleStudent {
			t.Errorf("role = %q, want %q", got, models.RoleStudent)
		}
		if _, err := newMockRepository(st).Teacher().GetByUserID(ctx, nil, "u1"); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("live teacher lookup after demote: err = %v, want record not found", err)
		}

		// A full demote/promote cycle must work: the retired record stays
		// behind soft-deleted and must not block the new row.
		if _, err := svc.PromoteToTeacher(ctx, &CreateTeacherRequest{Email: "alice@example.com"}); err != nil {
			t.Fatalf("re-promote after demote: %v", err)
		}
		if got := st.users["u1"].Role; got != models.RoleTeacher {
			t.Errorf("role = %q, want %q", got, models.RoleTeacher)
		}
		if len(st.teachers) != 2 {
			t.Errorf("teacher rows = %d, want 2 (one retired, one live)", len(st.teachers))
		}
	})

	t.Run("unknown teacher", func(t *testing.T) {
		st := newMockStore()
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		if err := svc.DemoteTeacher(ctx, 42); !errors.Is(err, ErrTeacherNotFound) {
			t.Errorf("err = %v, want ErrTeacherNotFound", err)
		}
	})

	t.Run("role conflict rolls back", func(t *testing.T) {
		st := newMockStore()
		st.addUser("u1", "Alice", "alice@example.com", models.RoleTeacher)
		svc := newTestRoleService(st, events.NewMockEventPublisher())

		teacher := &models.Teacher{UserID: "u1", IsActive: true}
		if err := newMockRepository(st).Teacher().Create(ctx, nil, teacher); err != nil {
			t.Fatalf("seed teacher: %v", err)
		}

		// Role flips underneath the demotion.
		st.users["u1"].Role = models.RoleStudent

		if err := svc.DemoteTeacher(ctx, teacher.ID); !errors.Is(err, ErrRoleConflict) {
			t.Errorf("err = %v, want ErrRoleConflict", err)
		}
	})
}
