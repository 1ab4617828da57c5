package service

import (
	"context"
	"fmt"
	"time"

	"github.com/comanda-pos/api/internal/enum"
)

// CounterStore is an atomic increment-and-read over named counters.
// Satisfied by *database.Queries.
type CounterStore interface {
	IncrementCounter(ctx context.Context, key string) (int64, error)
}

// Sequencer hands out folios and daily order numbers. Dates are taken in loc.
type Sequencer struct {
	counters CounterStore
	loc      *time.Location
}

func NewSequencer(counters CounterStore, loc *time.Location) *Sequencer {
	if loc == nil {
		loc = time.UTC
	}
	return &Sequencer{counters: counters, loc: loc}
}

// Next returns the post-increment value of counter key.
func (s *Sequencer) Next(ctx context.Context, key string) (int64, error) {
	n, err := s.counters.IncrementCounter(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("increment counter %q: %w", key, err)
	}
	return n, nil
}

// Folio formats ORD-YYMMDD-NNNN. The date is the creation day but the
// sequence comes from the global "orden" counter and never resets.
func (s *Sequencer) Folio(ctx context.Context, now time.Time) (string, error) {
	n, err := s.Next(ctx, enum.CounterOrder)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", now.In(s.loc).Format("060102"), n), nil
}

// DailyNumber returns the next numero_pedido for the day of now.
func (s *Sequencer) DailyNumber(ctx context.Context, now time.Time) (int32, error) {
	key := fmt.Sprintf(enum.CounterDailyPedidoFmt, now.In(s.loc).Format("20060102"))
	n, err := s.Next(ctx, key)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
