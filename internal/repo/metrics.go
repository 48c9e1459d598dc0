// Package repo implements the data persistence layer for domain entities.
// This file decorates a ContactStore with Prometheus counters and latency
// histograms, labelled by operation and outcome only to keep cardinality
// bounded.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

var (
	// storeOps counts store operations by op and result (ok|not_found|invalid|error).
	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contacts_store_operations_total",
			Help: "Total number of contact store operations.",
		},
		[]string{"op", "result"},
	)

	// storeLat records store operation duration in seconds by op.
	storeLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contacts_store_operation_duration_seconds",
			Help:    "Duration of contact store operations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(storeOps, storeLat)
}

// instrumented wraps a ContactStore and records metrics for every call.
type instrumented struct {
	next ContactStore
}

// Instrument returns next wrapped with Prometheus instrumentation.
func Instrument(next ContactStore) ContactStore {
	if _, ok := next.(instrumented); ok {
		return next
	}
	return instrumented{next: next}
}

func observe(op string, start time.Time, err error) {
	storeLat.WithLabelValues(op).Observe(time.Since(start).Seconds())
	storeOps.WithLabelValues(op, resultLabel(err)).Inc()
}

// resultLabel classifies err for the result label.
func resultLabel(err error) string {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "error"
	}
}

func (s instrumented) Insert(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	start := time.Now()
	out, err := s.next.Insert(ctx, c)
	observe("insert", start, err)
	return out, err
}

func (s instrumented) ListAll(ctx context.Context) ([]domain.Contact, error) {
	start := time.Now()
	out, err := s.next.ListAll(ctx)
	observe("list", start, err)
	return out, err
}

func (s instrumented) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	start := time.Now()
	out, err := s.next.FindByID(ctx, id)
	observe("find", start, err)
	return out, err
}

func (s instrumented) UpdateByID(ctx context.Context, id string, f domain.ContactFields) (*domain.Contact, error) {
	start := time.Now()
	out, err := s.next.UpdateByID(ctx, id, f)
	observe("update", start, err)
	return out, err
}

func (s instrumented) DeleteByID(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeleteByID(ctx, id)
	observe("delete", start, err)
	return err
}

func (s instrumented) Stats(ctx context.Context) (int64, *time.Time, error) {
	start := time.Now()
	n, ts, err := s.next.Stats(ctx)
	observe("stats", start, err)
	return n, ts, err
}

func (s instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
