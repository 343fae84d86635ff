package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
)

type latestKey struct {
	subject   string
	predicate string
}

// MemoryLog is a mutex-guarded in-memory append-only log with a materialized
// (subject, predicate) -> latest index. It backs tests and serves as the
// degradation target when a durable backend fails.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []domain.Triple
	byID    map[uuid.UUID]int
	latest  map[latestKey]int
	seq     int64
	closed  bool
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		byID:   make(map[uuid.UUID]int),
		latest: make(map[latestKey]int),
	}
}

func (l *MemoryLog) Append(ctx context.Context, t *domain.Triple) error {
	if err := t.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return &domain.StorageError{Op: "append", Err: ErrClosed}
	}

	l.seq++
	t.ID = uuid.New()
	t.Seq = l.seq
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	idx := len(l.entries)
	l.entries = append(l.entries, *t)
	l.byID[t.ID] = idx

	key := latestKey{t.Subject, t.Predicate}
	if cur, ok := l.latest[key]; !ok || !t.CreatedAt.Before(l.entries[cur].CreatedAt) {
		// >= keeps the later append position on equal timestamps
		l.latest[key] = idx
	}
	return nil
}

func (l *MemoryLog) GetByID(ctx context.Context, id uuid.UUID) (*domain.Triple, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	t := l.entries[idx]
	return &t, nil
}

func (l *MemoryLog) Search(ctx context.Context, p domain.TriplePattern) ([]domain.Triple, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Triple
	for i := range l.entries {
		t := &l.entries[i]
		if !matches(t, p) {
			continue
		}
		out = append(out, *t)
		if p.Limit > 0 && len(out) >= p.Limit {
			break
		}
	}
	return out, nil
}

func matches(t *domain.Triple, p domain.TriplePattern) bool {
	if p.Subject != "" && t.Subject != p.Subject {
		return false
	}
	if p.Predicate != "" && t.Predicate != p.Predicate {
		return false
	}
	if p.Object != "" && !strings.Contains(t.Object, p.Object) {
		return false
	}
	if t.Confidence < p.MinConfidence {
		return false
	}
	if p.After != nil && t.CreatedAt.Before(*p.After) {
		return false
	}
	if p.Before != nil && t.CreatedAt.After(*p.Before) {
		return false
	}
	return true
}

func (l *MemoryLog) Latest(ctx context.Context, subject, predicate string) (*domain.Triple, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.latest[latestKey{subject, predicate}]
	if !ok {
		return nil, ErrNotFound
	}
	t := l.entries[idx]
	return &t, nil
}

func (l *MemoryLog) Count(ctx context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.entries)), nil
}

func (l *MemoryLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
