package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/store"
	"go.uber.org/zap"
)

func auditTriple(n string) domain.Triple {
	return domain.Triple{Subject: "agent:" + n, Predicate: "belief_added", Object: n, Confidence: 1}
}

func TestAuditLogger_RecordNeverBlocks(t *testing.T) {
	// Queue of 2, no drain loop running: the third record must drop, not block.
	a := NewAuditLogger(store.NewMemoryLog(), 2, zap.NewNop())

	done := make(chan struct{})
	go func() {
		a.Record(auditTriple("1"))
		a.Record(auditTriple("2"))
		a.Record(auditTriple("3"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	if a.Dropped() != 1 {
		t.Fatalf("expected 1 dropped record, got %d", a.Dropped())
	}

	select {
	case err := <-a.Errors():
		var se *domain.StorageError
		if !errors.As(err, &se) {
			t.Fatalf("expected a StorageError in the sink, got %v", err)
		}
		if !errors.Is(err, ErrAuditQueueFull) {
			t.Fatalf("expected ErrAuditQueueFull, got %v", err)
		}
	default:
		t.Fatal("expected the drop to be reported to the error sink")
	}
}

func TestAuditLogger_StopDrainsQueue(t *testing.T) {
	log := store.NewMemoryLog()
	a := NewAuditLogger(log, 8, zap.NewNop())

	a.Record(auditTriple("1"))
	a.Record(auditTriple("2"))
	a.Record(auditTriple("3"))

	a.Start()
	a.Stop()

	n, _ := log.Count(context.Background())
	if n != 3 {
		t.Fatalf("expected all queued records appended on stop, got %d", n)
	}
}

func TestAuditLogger_AppendFailureGoesToSink(t *testing.T) {
	log := store.NewMemoryLog()
	_ = log.Close() // every append now fails with a StorageError

	a := NewAuditLogger(log, 8, zap.NewNop())
	a.Record(auditTriple("1"))
	a.Start()
	a.Stop()

	select {
	case err := <-a.Errors():
		var se *domain.StorageError
		if !errors.As(err, &se) {
			t.Fatalf("expected a StorageError, got %v", err)
		}
	default:
		t.Fatal("expected the append failure in the error sink")
	}
}
