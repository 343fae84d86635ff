package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

// failingLog fails every operation with a StorageError.
type failingLog struct{}

func (f *failingLog) storageErr(op string) error {
	return &domain.StorageError{Op: op, Err: errors.New("backend down")}
}

func (f *failingLog) Append(ctx context.Context, t *domain.Triple) error {
	return f.storageErr("append")
}

func (f *failingLog) GetByID(ctx context.Context, id uuid.UUID) (*domain.Triple, error) {
	return nil, f.storageErr("get")
}

func (f *failingLog) Search(ctx context.Context, p domain.TriplePattern) ([]domain.Triple, error) {
	return nil, f.storageErr("search")
}

func (f *failingLog) Latest(ctx context.Context, subject, predicate string) (*domain.Triple, error) {
	return nil, f.storageErr("latest")
}

func (f *failingLog) Count(ctx context.Context) (int64, error) {
	return 0, f.storageErr("count")
}

func (f *failingLog) Close() error { return nil }

func TestFallbackLog_DegradesOnStorageError(t *testing.T) {
	l := NewFallbackLog(&failingLog{}, zap.NewNop())
	ctx := context.Background()

	degradeCalls := 0
	l.OnDegrade = func(err error) { degradeCalls++ }

	tr := &domain.Triple{Subject: "s", Predicate: "p", Object: "o", Confidence: 1}
	if err := l.Append(ctx, tr); err != nil {
		t.Fatalf("expected degraded append to succeed, got %v", err)
	}

	if !l.Degraded() {
		t.Fatal("expected log to report degraded")
	}
	if degradeCalls != 1 {
		t.Fatalf("expected OnDegrade to fire once, got %d", degradeCalls)
	}

	// Subsequent operations serve from memory without new degrade calls.
	got, err := l.GetByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("expected memory read to succeed, got %v", err)
	}
	if got.Object != "o" {
		t.Fatalf("expected the degraded append to be readable, got %q", got.Object)
	}
	if degradeCalls != 1 {
		t.Fatalf("expected no further OnDegrade calls, got %d", degradeCalls)
	}
}

func TestFallbackLog_ValidationErrorsDoNotDegrade(t *testing.T) {
	l := NewFallbackLog(NewMemoryLog(), zap.NewNop())
	ctx := context.Background()

	err := l.Append(ctx, &domain.Triple{Subject: "", Predicate: "p", Object: "o", Confidence: 1})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError to pass through, got %v", err)
	}
	if l.Degraded() {
		t.Fatal("validation failure must not degrade the log")
	}
}

func TestFallbackLog_NotFoundDoesNotDegrade(t *testing.T) {
	l := NewFallbackLog(NewMemoryLog(), zap.NewNop())

	if _, err := l.Latest(context.Background(), "s", "p"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if l.Degraded() {
		t.Fatal("not-found must not degrade the log")
	}
}

func TestFallbackLog_HealthyPrimaryServes(t *testing.T) {
	primary := NewMemoryLog()
	l := NewFallbackLog(primary, zap.NewNop())
	ctx := context.Background()

	if err := l.Append(ctx, &domain.Triple{Subject: "s", Predicate: "p", Object: "o", Confidence: 1}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	n, err := primary.Count(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected the append to land in the primary, got %d", n)
	}
	if l.Degraded() {
		t.Fatal("healthy primary must not degrade")
	}
}
