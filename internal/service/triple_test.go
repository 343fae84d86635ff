package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/store"
	"go.uber.org/zap"
)

// mockLatestCache implements domain.LatestCache for testing.
type mockLatestCache struct {
	entries     map[string]*domain.Triple
	gets        int
	hits        int
	sets        int
	invalidates int
}

func newMockLatestCache() *mockLatestCache {
	return &mockLatestCache{entries: make(map[string]*domain.Triple)}
}

func (c *mockLatestCache) key(subject, predicate string) string {
	return subject + "|" + predicate
}

func (c *mockLatestCache) Get(ctx context.Context, subject, predicate string) (*domain.Triple, bool) {
	c.gets++
	t, ok := c.entries[c.key(subject, predicate)]
	if ok {
		c.hits++
	}
	return t, ok
}

func (c *mockLatestCache) Set(ctx context.Context, t *domain.Triple) {
	c.sets++
	c.entries[c.key(t.Subject, t.Predicate)] = t
}

func (c *mockLatestCache) Invalidate(ctx context.Context, subject, predicate string) {
	c.invalidates++
	delete(c.entries, c.key(subject, predicate))
}

func TestTripleService_Append_RejectsInvalid(t *testing.T) {
	svc := NewTripleService(store.NewMemoryLog(), zap.NewNop())

	var ve *domain.ValidationError
	err := svc.Append(context.Background(), &domain.Triple{Subject: "s", Predicate: "p", Object: "o", Confidence: 2})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTripleService_GetByID_NotFound(t *testing.T) {
	svc := NewTripleService(store.NewMemoryLog(), zap.NewNop())

	if _, err := svc.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrTripleNotFound) {
		t.Fatalf("expected ErrTripleNotFound, got %v", err)
	}
}

func TestTripleService_Latest_ReadThroughCache(t *testing.T) {
	svc := NewTripleService(store.NewMemoryLog(), zap.NewNop())
	cache := newMockLatestCache()
	svc.SetLatestCache(cache)
	ctx := context.Background()

	if err := svc.Append(ctx, &domain.Triple{Subject: "s", Predicate: "p", Object: "v1", Confidence: 1}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// First lookup misses the cache and fills it.
	got, err := svc.Latest(ctx, "s", "p")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Object != "v1" || cache.sets != 1 || cache.hits != 0 {
		t.Fatalf("expected a miss-then-fill, got object %q, sets %d, hits %d", got.Object, cache.sets, cache.hits)
	}

	// Second lookup is served from the cache.
	if _, err := svc.Latest(ctx, "s", "p"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected a cache hit, got %d", cache.hits)
	}

	// An append for the same key invalidates so the next read sees v2.
	if err := svc.Append(ctx, &domain.Triple{Subject: "s", Predicate: "p", Object: "v2", Confidence: 1}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cache.invalidates == 0 {
		t.Fatal("expected the append to invalidate the cache")
	}

	got, err = svc.Latest(ctx, "s", "p")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Object != "v2" {
		t.Fatalf("expected the new value after invalidation, got %q", got.Object)
	}
}

func TestTripleService_Latest_NotFound(t *testing.T) {
	svc := NewTripleService(store.NewMemoryLog(), zap.NewNop())

	if _, err := svc.Latest(context.Background(), "s", "p"); !errors.Is(err, ErrTripleNotFound) {
		t.Fatalf("expected ErrTripleNotFound, got %v", err)
	}
}
