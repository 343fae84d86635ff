package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/store"
	"go.uber.org/zap"
)

var ErrTripleNotFound = errors.New("triple not found")

// TripleService fronts the append-only log: append-time validation plus an
// optional read-through cache for Latest lookups.
type TripleService struct {
	log    domain.TripleLog
	cache  domain.LatestCache
	logger *zap.Logger
}

func NewTripleService(log domain.TripleLog, logger *zap.Logger) *TripleService {
	return &TripleService{log: log, logger: logger}
}

// SetLatestCache installs a read-through cache for Latest.
func (s *TripleService) SetLatestCache(c domain.LatestCache) {
	s.cache = c
}

func (s *TripleService) Append(ctx context.Context, t *domain.Triple) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.log.Append(ctx, t); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, t.Subject, t.Predicate)
	}
	return nil
}

func (s *TripleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Triple, error) {
	t, err := s.log.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTripleNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TripleService) Search(ctx context.Context, p domain.TriplePattern) ([]domain.Triple, error) {
	return s.log.Search(ctx, p)
}

func (s *TripleService) Latest(ctx context.Context, subject, predicate string) (*domain.Triple, error) {
	if s.cache != nil {
		if t, ok := s.cache.Get(ctx, subject, predicate); ok {
			return t, nil
		}
	}
	t, err := s.log.Latest(ctx, subject, predicate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTripleNotFound
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, t)
	}
	return t, nil
}

func (s *TripleService) Count(ctx context.Context) (int64, error) {
	return s.log.Count(ctx)
}
