package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// defaultSubOrderName labels the suborden created implicitly by the first dish.
const defaultSubOrderName = "General"

// AddSubOrder creates a named suborden under an order in Recepcion.
func (s *OrderService) AddSubOrder(ctx context.Context, orderID uuid.UUID, name string) (*database.SubOrder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := getEditableOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	sub, err := store.CreateSubOrder(ctx, database.CreateSubOrderParams{OrderID: orderID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("create suborden: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(enum.EventOrderUpdated, orderID, newOrderEvent(order))
	return &sub, nil
}

// AddDishRequest is a dish line to add. StewID is optional.
type AddDishRequest struct {
	DishID   string
	StewID   string
	Quantity int32
	Notes    string
}

// DishLineResult is the created dish line and the order after recompute.
type DishLineResult struct {
	Line  database.DishLine
	Order database.Order
}

// AddDishToSubOrder adds a dish line under an existing suborden.
func (s *OrderService) AddDishToSubOrder(ctx context.Context, subOrderID uuid.UUID, req AddDishRequest) (*DishLineResult, error) {
	if err := validateDish(req); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	sub, err := store.GetSubOrder(ctx, subOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubOrderNotFound
		}
		return nil, fmt.Errorf("get suborden: %w", err)
	}
	if _, err := getEditableOrder(ctx, store, sub.OrderID); err != nil {
		return nil, err
	}

	result, err := addDish(ctx, store, sub, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publishLine(result.Order, database.LineState{Kind: enum.LineKindPlatillo, ID: result.Line.ID})
	return result, nil
}

// AddDishToOrder adds a dish line to the order's first suborden, creating
// that suborden when the order has none yet.
func (s *OrderService) AddDishToOrder(ctx context.Context, orderID uuid.UUID, req AddDishRequest) (*DishLineResult, error) {
	if err := validateDish(req); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := getEditableOrder(ctx, store, orderID); err != nil {
		return nil, err
	}

	sub, err := store.GetFirstSubOrder(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		sub, err = store.CreateSubOrder(ctx, database.CreateSubOrderParams{OrderID: orderID, Name: defaultSubOrderName})
	}
	if err != nil {
		return nil, fmt.Errorf("resolve suborden: %w", err)
	}

	result, err := addDish(ctx, store, sub, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publishLine(result.Order, database.LineState{Kind: enum.LineKindPlatillo, ID: result.Line.ID})
	return result, nil
}

func validateDish(req AddDishRequest) error {
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if utf8.RuneCountInString(req.Notes) > maxLineNotes {
		return ErrLineNotesTooLong
	}
	return nil
}

func addDish(ctx context.Context, store OrderStore, sub database.SubOrder, req AddDishRequest) (*DishLineResult, error) {
	dishID, err := uuid.Parse(req.DishID)
	if err != nil {
		return nil, fmt.Errorf("platillo_id: %w", ErrInvalidID)
	}
	dish, err := store.GetDish(ctx, dishID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDishNotFound
		}
		return nil, fmt.Errorf("get dish: %w", err)
	}
	if !dish.IsActive {
		return nil, ErrDishNotFound
	}

	stewID := pgtype.UUID{}
	stewName := pgtype.Text{}
	if req.StewID != "" {
		sid, err := uuid.Parse(req.StewID)
		if err != nil {
			return nil, fmt.Errorf("guiso_id: %w", ErrInvalidID)
		}
		stew, err := store.GetStew(ctx, sid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrStewNotFound
			}
			return nil, fmt.Errorf("get stew: %w", err)
		}
		stewID = pgtype.UUID{Bytes: stew.ID, Valid: true}
		stewName = pgtype.Text{String: stew.Name, Valid: true}
	}

	cost := numericToDecimal(dish.Cost)
	if cost.IsNegative() {
		return nil, ErrNegativeCost
	}

	line, err := store.CreateDishLine(ctx, database.CreateDishLineParams{
		SubOrderID: sub.ID,
		DishID:     dish.ID,
		DishName:   dish.Name,
		StewID:     stewID,
		StewName:   stewName,
		UnitCost:   decimalToNumeric(cost),
		Quantity:   req.Quantity,
		Amount:     decimalToNumeric(lineAmount(cost, req.Quantity)),
		Notes:      optionalText(req.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("create dish line: %w", err)
	}

	order, err := recomputeTotal(ctx, store, sub.OrderID)
	if err != nil {
		return nil, err
	}
	return &DishLineResult{Line: line, Order: order}, nil
}

// AddProductRequest is a product line to add.
type AddProductRequest struct {
	ProductID string
	Quantity  int32
}

// ProductLineResult is the created product line, the order after recompute
// and the product's remaining stock.
type ProductLineResult struct {
	Line      database.ProductLine
	Order     database.Order
	Remaining int32
}

// AddProductLine takes the requested quantity out of stock with a single
// conditional decrement and records the line at the product's current cost.
func (s *OrderService) AddProductLine(ctx context.Context, orderID uuid.UUID, req AddProductRequest) (*ProductLineResult, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("producto_id: %w", ErrInvalidID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := getEditableOrder(ctx, store, orderID); err != nil {
		return nil, err
	}

	product, err := store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	cost := numericToDecimal(product.Cost)
	if cost.IsNegative() {
		return nil, ErrNegativeCost
	}

	remaining, err := store.DecrementProductStock(ctx, database.ProductStockParams{ID: productID, Quantity: req.Quantity})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStockExhausted
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	line, err := store.CreateProductLine(ctx, database.CreateProductLineParams{
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitCost:    decimalToNumeric(cost),
		Quantity:    req.Quantity,
		Amount:      decimalToNumeric(lineAmount(cost, req.Quantity)),
	})
	if err != nil {
		return nil, fmt.Errorf("create product line: %w", err)
	}

	order, err := recomputeTotal(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publishLine(order, database.LineState{Kind: enum.LineKindProducto, ID: line.ID})
	return &ProductLineResult{Line: line, Order: order, Remaining: remaining}, nil
}

// AddExtraRequest is an extra to attach to a dish line.
type AddExtraRequest struct {
	ExtraID  string
	Quantity int32
}

// AddExtraLine attaches an extra to a dish line. Extras do not count towards
// the persisted order total.
func (s *OrderService) AddExtraLine(ctx context.Context, dishLineID uuid.UUID, req AddExtraRequest) (*database.ExtraLine, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	extraID, err := uuid.Parse(req.ExtraID)
	if err != nil {
		return nil, fmt.Errorf("extra_id: %w", ErrInvalidID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	dish, err := getLineState(ctx, store, database.LineRef{Kind: enum.LineKindPlatillo, ID: dishLineID})
	if err != nil {
		return nil, err
	}
	order, err := getEditableOrder(ctx, store, dish.OrderID)
	if err != nil {
		return nil, err
	}

	extra, err := store.GetExtra(ctx, extraID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExtraNotFound
		}
		return nil, fmt.Errorf("get extra: %w", err)
	}
	if !extra.IsActive {
		return nil, ErrExtraNotFound
	}
	cost := numericToDecimal(extra.Cost)
	if cost.IsNegative() {
		return nil, ErrNegativeCost
	}

	line, err := store.CreateExtraLine(ctx, database.CreateExtraLineParams{
		DishLineID: dishLineID,
		ExtraID:    extra.ID,
		ExtraName:  extra.Name,
		UnitCost:   decimalToNumeric(cost),
		Quantity:   req.Quantity,
		Amount:     decimalToNumeric(lineAmount(cost, req.Quantity)),
	})
	if err != nil {
		return nil, fmt.Errorf("create extra line: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publishLine(order, database.LineState{Kind: enum.LineKindExtra, ID: line.ID})
	return &line, nil
}

// RemoveLine deletes a line item and recomputes the total. Removing a product
// line returns its quantity to stock; removing a dish line drops its extras.
func (s *OrderService) RemoveLine(ctx context.Context, ref database.LineRef) (*database.Order, error) {
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
	if _, err := getEditableOrder(ctx, store, state.OrderID); err != nil {
		return nil, err
	}

	if ref.Kind == enum.LineKindProducto {
		line, err := store.GetProductLine(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("get product line: %w", err)
		}
		if _, err := store.IncrementProductStock(ctx, database.ProductStockParams{
			ID:       line.ProductID,
			Quantity: line.Quantity,
		}); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			// A product deleted from the catalog has no stock to restore.
			return nil, fmt.Errorf("restore stock: %w", err)
		}
	}

	if _, err := store.DeleteLine(ctx, ref); err != nil {
		return nil, fmt.Errorf("delete line: %w", err)
	}

	order, err := recomputeTotal(ctx, store, state.OrderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(enum.EventOrderUpdated, order.ID, newOrderEvent(order))
	return &order, nil
}

// publishLine announces a line created under order. New lines start neither
// listo nor entregado.
func (s *OrderService) publishLine(order database.Order, state database.LineState) {
	state.OrderID = order.ID
	s.notifier.Publish(enum.EventItemUpdated, order.ID, LineEvent{
		LineState: state,
		Total:     numericToDecimal(order.Total).StringFixed(2),
	})
}
