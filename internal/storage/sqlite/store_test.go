package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/brightlisting/rewriter/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCheckAndReserve(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Grant(ctx, "user-1", 2); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	remaining, err := s.CheckAndReserve(ctx, "user-1")
	if err != nil {
		t.Fatalf("CheckAndReserve failed: %v", err)
	}
	if remaining != 1 {
		t.Errorf("expected 1 remaining, got %d", remaining)
	}

	remaining, err = s.CheckAndReserve(ctx, "user-1")
	if err != nil {
		t.Fatalf("second CheckAndReserve failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}

	_, err = s.CheckAndReserve(ctx, "user-1")
	if !errors.Is(err, storage.ErrInsufficientCredits) {
		t.Errorf("expected ErrInsufficientCredits, got %v", err)
	}
}

func TestCheckAndReserveUnknownUser(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CheckAndReserve(context.Background(), "nobody")
	if !errors.Is(err, storage.ErrInsufficientCredits) {
		t.Errorf("expected ErrInsufficientCredits for unknown user, got %v", err)
	}
}

func TestRefundRestoresBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Grant(ctx, "user-1", 1); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := s.CheckAndReserve(ctx, "user-1"); err != nil {
		t.Fatalf("CheckAndReserve failed: %v", err)
	}
	if err := s.Refund(ctx, "user-1"); err != nil {
		t.Fatalf("Refund failed: %v", err)
	}

	balance, err := s.Balance(ctx, "user-1")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 1 {
		t.Errorf("expected balance 1 after refund, got %d", balance)
	}
}

func TestCommitSettlesReservation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Grant(ctx, "user-1", 3); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := s.CheckAndReserve(ctx, "user-1"); err != nil {
		t.Fatalf("CheckAndReserve failed: %v", err)
	}
	if err := s.Commit(ctx, "user-1"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	balance, err := s.Balance(ctx, "user-1")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 2 {
		t.Errorf("expected balance 2 after commit, got %d", balance)
	}
}

func TestBalanceUnknownUserIsZero(t *testing.T) {
	s := newTestStore(t)

	balance, err := s.Balance(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected 0, got %d", balance)
	}
}

func TestSaveAndGetRewrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &storage.RewriteRecord{
		ID:           "run-1",
		UserID:       "user-1",
		Address:      "123 Main St",
		Status:       "completed",
		PromptTokens: 842,
		DurationNS:   1500000,
		Variations: map[string]string{
			"professional": "professional output",
			"fun":          "fun output",
			"balanced":     "balanced output",
		},
	}

	if err := s.SaveRewrite(ctx, rec); err != nil {
		t.Fatalf("SaveRewrite failed: %v", err)
	}

	got, err := s.GetRewrite(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRewrite failed: %v", err)
	}
	if got.Address != "123 Main St" || got.Status != "completed" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.PromptTokens != 842 {
		t.Errorf("expected prompt tokens 842, got %d", got.PromptTokens)
	}
	if len(got.Variations) != 3 {
		t.Errorf("expected 3 variations, got %d", len(got.Variations))
	}
	if got.Variations["fun"] != "fun output" {
		t.Errorf("unexpected fun variation %q", got.Variations["fun"])
	}
}

func TestGetRewriteNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetRewrite(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing rewrite")
	}
}
