package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

var ErrAuditQueueFull = errors.New("audit queue full")

const (
	defaultAuditQueueSize = 256
	auditAppendTimeout    = 10 * time.Second
)

// AuditLogger persists audit triples through a bounded background queue.
// Record never blocks and never fails the primary call: when the queue is
// full or an append fails, the error goes to the sink channel and the log,
// and the in-memory state the caller already changed stays changed.
type AuditLogger struct {
	log    domain.TripleLog
	logger *zap.Logger

	queue   chan domain.Triple
	errs    chan error
	dropped atomic.Int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewAuditLogger(log domain.TripleLog, queueSize int, logger *zap.Logger) *AuditLogger {
	if queueSize <= 0 {
		queueSize = defaultAuditQueueSize
	}
	return &AuditLogger{
		log:    log,
		logger: logger,
		queue:  make(chan domain.Triple, queueSize),
		errs:   make(chan error, queueSize),
		stopCh: make(chan struct{}),
	}
}

// Errors is the sink for audit failures. Best-effort: entries are dropped
// when nobody drains it.
func (a *AuditLogger) Errors() <-chan error {
	return a.errs
}

// Dropped returns how many audit records were discarded on queue overflow.
func (a *AuditLogger) Dropped() int64 {
	return a.dropped.Load()
}

// Record enqueues an audit triple, fire-and-forget.
func (a *AuditLogger) Record(t domain.Triple) {
	select {
	case a.queue <- t:
	default:
		a.dropped.Add(1)
		a.logger.Warn("audit queue full, dropping record",
			zap.String("subject", t.Subject),
			zap.String("predicate", t.Predicate))
		a.report(&domain.StorageError{Op: "audit enqueue", Err: ErrAuditQueueFull})
	}
}

func (a *AuditLogger) report(err error) {
	select {
	case a.errs <- err:
	default:
	}
}

// Start runs the drain loop in a background goroutine.
func (a *AuditLogger) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info("audit logger started", zap.Int("queue_size", cap(a.queue)))
		for {
			select {
			case t := <-a.queue:
				a.append(t)
			case <-a.stopCh:
				// drain what is already queued before exiting
				for {
					select {
					case t := <-a.queue:
						a.append(t)
					default:
						a.logger.Info("audit logger stopped")
						return
					}
				}
			}
		}
	}()
}

// Stop drains the queue and stops the background goroutine.
func (a *AuditLogger) Stop() {
	close(a.stopCh)
	a.wg.Wait()
}

func (a *AuditLogger) append(t domain.Triple) {
	ctx, cancel := context.WithTimeout(context.Background(), auditAppendTimeout)
	defer cancel()
	if err := a.log.Append(ctx, &t); err != nil {
		a.logger.Warn("audit append failed",
			zap.String("subject", t.Subject),
			zap.String("predicate", t.Predicate),
			zap.Error(err))
		a.report(err)
	}
}
