package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MarkReady sets listo on a line item. Marking a ready item again succeeds
// without change.
func (s *OrderService) MarkReady(ctx context.Context, ref database.LineRef) (*database.LineState, error) {
	if !enum.IsLineKind(ref.Kind) {
		return nil, ErrInvalidLineKind
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	state, err := s.newStore(tx).MarkLineReady(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("mark ready: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(enum.EventItemUpdated, state.OrderID, LineEvent{LineState: state})
	return &state, nil
}

// MarkDelivered sets entregado on a line item that is already listo.
// Delivering a delivered item again succeeds without change.
func (s *OrderService) MarkDelivered(ctx context.Context, ref database.LineRef) (*database.LineState, error) {
	if !enum.IsLineKind(ref.Kind) {
		return nil, ErrInvalidLineKind
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	state, err := getLineState(ctx, store, ref)
	if err != nil {
		return nil, err
	}
	if !state.Ready {
		return nil, ErrLineNotReady
	}
	if state.Delivered {
		return &state, nil
	}

	state, err = store.MarkLineDelivered(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(enum.EventItemUpdated, state.OrderID, LineEvent{LineState: state})
	return &state, nil
}

// DeliverySummary is the dispatch state of an order.
type DeliverySummary struct {
	OrderID uuid.UUID
	// ReadyForDispatch holds when every line item, extras included, is entregado.
	ReadyForDispatch bool
	Undelivered      []database.LineState
}

// DeliveryStatus reports which items of an order are still undelivered.
func (s *OrderService) DeliveryStatus(ctx context.Context, orderID uuid.UUID) (*DeliverySummary, error) {
	var summary *DeliverySummary
	err := s.read(ctx, func(store OrderStore) error {
		if _, err := getOrder(ctx, store, orderID); err != nil {
			return err
		}
		lines, err := orderLines(ctx, store, orderID)
		if err != nil {
			return err
		}
		summary = &DeliverySummary{OrderID: orderID, Undelivered: []database.LineState{}}
		for _, l := range lines {
			if !l.Delivered {
				summary.Undelivered = append(summary.Undelivered, l)
			}
		}
		summary.ReadyForDispatch = len(summary.Undelivered) == 0
		return nil
	})
	return summary, err
}

// BulkResult lists the items a bulk operation changed and those it skipped.
type BulkResult struct {
	Order   database.Order
	Changed []database.LineRef
	Skipped []database.LineRef
}

// DeliverAll marks every ready, undelivered item of an order as entregado.
// Items not yet listo are skipped and reported rather than failing the batch.
func (s *OrderService) DeliverAll(ctx context.Context, orderID uuid.UUID) (*BulkResult, error) {
	return s.bulk(ctx, orderID, func(ctx context.Context, store OrderStore, l database.LineState) (bool, error) {
		if l.Delivered {
			return false, nil
		}
		if !l.Ready {
			return false, ErrLineNotReady
		}
		_, err := store.MarkLineDelivered(ctx, database.LineRef{Kind: l.Kind, ID: l.ID})
		return true, err
	})
}

// MarkAllReady marks every item of an order as listo.
func (s *OrderService) MarkAllReady(ctx context.Context, orderID uuid.UUID) (*BulkResult, error) {
	return s.bulk(ctx, orderID, func(ctx context.Context, store OrderStore, l database.LineState) (bool, error) {
		if l.Ready {
			return false, nil
		}
		_, err := store.MarkLineReady(ctx, database.LineRef{Kind: l.Kind, ID: l.ID})
		return true, err
	})
}

// bulk applies step to every line of an order in one transaction. A step
// returning ErrNotReady skips its line; any other error aborts.
func (s *OrderService) bulk(ctx context.Context, orderID uuid.UUID,
	step func(context.Context, OrderStore, database.LineState) (bool, error)) (*BulkResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := getOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := orderLines(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Order: order, Changed: []database.LineRef{}, Skipped: []database.LineRef{}}
	for _, l := range lines {
		ref := database.LineRef{Kind: l.Kind, ID: l.ID}
		changed, err := step(ctx, store, l)
		switch {
		case errors.Is(err, ErrNotReady):
			result.Skipped = append(result.Skipped, ref)
		case err != nil:
			return nil, fmt.Errorf("%s %s: %w", l.Kind, l.ID, err)
		case changed:
			result.Changed = append(result.Changed, ref)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	if len(result.Changed) > 0 {
		s.notifier.Publish(enum.EventOrderUpdated, orderID, newOrderEvent(result.Order))
	}
	return result, nil
}

func getLineState(ctx context.Context, store OrderStore, ref database.LineRef) (database.LineState, error) {
	state, err := store.GetLineState(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.LineState{}, ErrLineNotFound
		}
		return database.LineState{}, fmt.Errorf("get line: %w", err)
	}
	return state, nil
}

// orderLines flattens product, dish and extra lines of an order into their
// flag states: products, then dishes, then extras.
func orderLines(ctx context.Context, store OrderStore, orderID uuid.UUID) ([]database.LineState, error) {
	products, err := store.ListProductLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list product lines: %w", err)
	}
	dishes, err := store.ListDishLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list dish lines: %w", err)
	}
	extras, err := store.ListExtraLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list extra lines: %w", err)
	}

	lines := make([]database.LineState, 0, len(products)+len(dishes)+len(extras))
	for _, p := range products {
		lines = append(lines, database.LineState{Kind: enum.LineKindProducto, ID: p.ID, OrderID: orderID, Ready: p.Ready, Delivered: p.Delivered})
	}
	for _, d := range dishes {
		lines = append(lines, database.LineState{Kind: enum.LineKindPlatillo, ID: d.ID, OrderID: orderID, Ready: d.Ready, Delivered: d.Delivered})
	}
	for _, e := range extras {
		lines = append(lines, database.LineState{Kind: enum.LineKindExtra, ID: e.ID, OrderID: orderID, Ready: e.Ready, Delivered: e.Delivered})
	}
	return lines, nil
}
