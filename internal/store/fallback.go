package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

// FallbackLog wraps a durable primary log and degrades to an in-memory log
// on the first storage failure, trading durability for availability. Once
// degraded it never fails a call with a storage error again; the degradation
// itself is surfaced through the logger and the optional OnDegrade hook so
// an operator can see it.
type FallbackLog struct {
	primary  domain.TripleLog
	memory   *MemoryLog
	logger   *zap.Logger
	degraded atomic.Bool
	once     sync.Once

	// OnDegrade, if set, is called exactly once with the error that
	// triggered the switch.
	OnDegrade func(err error)
}

func NewFallbackLog(primary domain.TripleLog, logger *zap.Logger) *FallbackLog {
	return &FallbackLog{
		primary: primary,
		memory:  NewMemoryLog(),
		logger:  logger,
	}
}

// Degraded reports whether the durable backend has been abandoned.
func (l *FallbackLog) Degraded() bool {
	return l.degraded.Load()
}

func (l *FallbackLog) active() domain.TripleLog {
	if l.degraded.Load() {
		return l.memory
	}
	return l.primary
}

func (l *FallbackLog) degrade(err error) {
	l.once.Do(func() {
		l.degraded.Store(true)
		l.logger.Error("durable log unavailable, degrading to in-memory store; appends are no longer durable",
			zap.Error(err))
		if l.OnDegrade != nil {
			l.OnDegrade(err)
		}
	})
}

// storageFailure reports whether err should trigger degradation. Validation
// and not-found errors pass through untouched.
func storageFailure(err error) bool {
	var se *domain.StorageError
	return errors.As(err, &se)
}

func (l *FallbackLog) Append(ctx context.Context, t *domain.Triple) error {
	err := l.active().Append(ctx, t)
	if err != nil && storageFailure(err) && !l.degraded.Load() {
		l.degrade(err)
		return l.memory.Append(ctx, t)
	}
	return err
}

func (l *FallbackLog) GetByID(ctx context.Context, id uuid.UUID) (*domain.Triple, error) {
	t, err := l.active().GetByID(ctx, id)
	if err != nil && storageFailure(err) && !l.degraded.Load() {
		l.degrade(err)
		return l.memory.GetByID(ctx, id)
	}
	return t, err
}

func (l *FallbackLog) Search(ctx context.Context, p domain.TriplePattern) ([]domain.Triple, error) {
	out, err := l.active().Search(ctx, p)
	if err != nil && storageFailure(err) && !l.degraded.Load() {
		l.degrade(err)
		return l.memory.Search(ctx, p)
	}
	return out, err
}

func (l *FallbackLog) Latest(ctx context.Context, subject, predicate string) (*domain.Triple, error) {
	t, err := l.active().Latest(ctx, subject, predicate)
	if err != nil && storageFailure(err) && !l.degraded.Load() {
		l.degrade(err)
		return l.memory.Latest(ctx, subject, predicate)
	}
	return t, err
}

func (l *FallbackLog) Count(ctx context.Context) (int64, error) {
	n, err := l.active().Count(ctx)
	if err != nil && storageFailure(err) && !l.degraded.Load() {
		l.degrade(err)
		return l.memory.Count(ctx)
	}
	return n, err
}

// FindSimilar delegates to the primary when it supports similarity search
// and the log has not degraded.
func (l *FallbackLog) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]domain.TripleWithScore, error) {
	if l.degraded.Load() {
		return nil, ErrNotFound
	}
	ss, ok := l.primary.(domain.SimilaritySearcher)
	if !ok {
		return nil, ErrNotFound
	}
	return ss.FindSimilar(ctx, embedding, limit)
}

func (l *FallbackLog) Close() error {
	err := l.primary.Close()
	_ = l.memory.Close()
	return err
}
