package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	maxOrderNotes     = 500
	maxLineNotes      = 200
	defaultOrderLimit = 20
	maxOrderLimit     = 100
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order lifecycle needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	// orders
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	RecomputeOrderTotal(ctx context.Context, id uuid.UUID) (database.Order, error)

	// catalog snapshots
	GetOrderType(ctx context.Context, id uuid.UUID) (database.OrderType, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	CreateTemporaryTable(ctx context.Context, name string) (database.Table, error)
	DeleteIdleTemporaryTable(ctx context.Context, id uuid.UUID) (int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	GetDish(ctx context.Context, id uuid.UUID) (database.Dish, error)
	GetStew(ctx context.Context, id uuid.UUID) (database.Stew, error)
	GetExtra(ctx context.Context, id uuid.UUID) (database.Extra, error)
	DecrementProductStock(ctx context.Context, arg database.ProductStockParams) (int32, error)
	IncrementProductStock(ctx context.Context, arg database.ProductStockParams) (int32, error)

	// subordenes and lines
	CreateSubOrder(ctx context.Context, arg database.CreateSubOrderParams) (database.SubOrder, error)
	GetSubOrder(ctx context.Context, id uuid.UUID) (database.SubOrder, error)
	GetFirstSubOrder(ctx context.Context, orderID uuid.UUID) (database.SubOrder, error)
	ListSubOrdersByOrder(ctx context.Context, orderID uuid.UUID) ([]database.SubOrder, error)
	CreateDishLine(ctx context.Context, arg database.CreateDishLineParams) (database.DishLine, error)
	CreateProductLine(ctx context.Context, arg database.CreateProductLineParams) (database.ProductLine, error)
	CreateExtraLine(ctx context.Context, arg database.CreateExtraLineParams) (database.ExtraLine, error)
	GetProductLine(ctx context.Context, id uuid.UUID) (database.ProductLine, error)
	ListDishLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.DishLine, error)
	ListProductLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ProductLine, error)
	ListExtraLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ExtraLine, error)
	GetLineState(ctx context.Context, ref database.LineRef) (database.LineState, error)
	MarkLineReady(ctx context.Context, ref database.LineRef) (database.LineState, error)
	MarkLineDelivered(ctx context.Context, ref database.LineRef) (database.LineState, error)
	DeleteLine(ctx context.Context, ref database.LineRef) (int64, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// Notifier receives an event after each committed mutation.
type Notifier interface {
	Publish(event string, orderID uuid.UUID, payload any)
}

// OrderEvent is the payload of orden.creada and orden.actualizada events.
type OrderEvent struct {
	ID     uuid.UUID `json:"id"`
	Folio  string    `json:"folio"`
	Status string    `json:"estatus"`
	Total  string    `json:"total"`
}

// LineEvent is the payload of item.actualizado events.
type LineEvent struct {
	database.LineState
	Total string `json:"total,omitempty"`
}

func newOrderEvent(o database.Order) OrderEvent {
	return OrderEvent{
		ID:     o.ID,
		Folio:  o.Folio,
		Status: o.Status,
		Total:  numericToDecimal(o.Total).StringFixed(2),
	}
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, uuid.UUID, any) {}

// OrderService is the order lifecycle manager: status transitions, line item
// edits, readiness/delivery tracking and total aggregation.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	seq      *Sequencer
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// Option configures an OrderService.
type Option func(*OrderService)

func WithNotifier(n Notifier) Option {
	return func(s *OrderService) { s.notifier = n }
}

// WithLocation sets the zone used for folio dates, daily counters and the
// list date filter.
func WithLocation(loc *time.Location) Option {
	return func(s *OrderService) { s.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService creates a new OrderService. counters must not be bound to a
// transaction: folio numbers are taken outside the order's own transaction.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, counters CounterStore, opts ...Option) *OrderService {
	s := &OrderService{
		pool:     pool,
		newStore: newStore,
		notifier: noopNotifier{},
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seq = NewSequencer(counters, s.loc)
	return s
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	CreatedBy    uuid.UUID
	OrderTypeID  string
	TableID      string
	NewTableName string // creates a temporal mesa when set
	CustomerName string
	Notes        string
	Pending      bool // start in Pendiente instead of Recepcion
}

// CreateOrder assigns a folio and daily number, snapshots the order type and
// table names, and inserts the order with a zero total.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*database.Order, error) {
	if strings.TrimSpace(req.OrderTypeID) == "" {
		return nil, ErrOrderTypeRequired
	}
	orderTypeID, err := uuid.Parse(req.OrderTypeID)
	if err != nil {
		return nil, fmt.Errorf("tipo_orden_id: %w", ErrInvalidID)
	}
	var tableID uuid.UUID
	if req.TableID != "" {
		if strings.TrimSpace(req.NewTableName) != "" {
			return nil, ErrTableConflict
		}
		tableID, err = uuid.Parse(req.TableID)
		if err != nil {
			return nil, fmt.Errorf("mesa_id: %w", ErrInvalidID)
		}
	}
	if utf8.RuneCountInString(req.Notes) > maxOrderNotes {
		return nil, ErrOrderNotesTooLong
	}

	now := s.now()
	folio, err := s.seq.Folio(ctx, now)
	if err != nil {
		return nil, err
	}
	dailyNumber, err := s.seq.DailyNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	orderType, err := store.GetOrderType(ctx, orderTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderTypeNotFound
		}
		return nil, fmt.Errorf("get order type: %w", err)
	}

	tableRef := pgtype.UUID{}
	tableName := pgtype.Text{}
	switch {
	case req.TableID != "":
		table, err := store.GetTable(ctx, tableID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrTableNotFound
			}
			return nil, fmt.Errorf("get table: %w", err)
		}
		tableRef = pgtype.UUID{Bytes: table.ID, Valid: true}
		tableName = pgtype.Text{String: table.Name, Valid: true}
	case strings.TrimSpace(req.NewTableName) != "":
		table, err := store.CreateTemporaryTable(ctx, strings.TrimSpace(req.NewTableName))
		if err != nil {
			return nil, fmt.Errorf("create temporary table: %w", err)
		}
		tableRef = pgtype.UUID{Bytes: table.ID, Valid: true}
		tableName = pgtype.Text{String: table.Name, Valid: true}
	}

	status := enum.OrderStatusRecepcion
	if req.Pending {
		status = enum.OrderStatusPendiente
	}

	createdBy := pgtype.UUID{}
	if req.CreatedBy != uuid.Nil {
		createdBy = pgtype.UUID{Bytes: req.CreatedBy, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		Folio:         folio,
		DailyNumber:   dailyNumber,
		OrderTypeID:   pgtype.UUID{Bytes: orderType.ID, Valid: true},
		OrderTypeName: orderType.Name,
		Status:        status,
		TableID:       tableRef,
		TableName:     tableName,
		CustomerName:  optionalText(req.CustomerName),
		Notes:         optionalText(req.Notes),
		CreatedBy:     createdBy,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(enum.EventOrderCreated, order.ID, newOrderEvent(order))
	return &order, nil
}

// ListOrdersRequest filters the order list. Empty fields are ignored.
type ListOrdersRequest struct {
	Status  string
	TableID string
	Date    string // YYYY-MM-DD in the service location
	Limit   int32
	Offset  int32
}

func (s *OrderService) ListOrders(ctx context.Context, req ListOrdersRequest) ([]database.Order, error) {
	params := database.ListOrdersParams{Limit: req.Limit, Offset: req.Offset}
	if params.Limit < 0 || params.Offset < 0 {
		return nil, ErrInvalidPagination
	}
	if params.Limit == 0 {
		params.Limit = defaultOrderLimit
	}
	if params.Limit > maxOrderLimit {
		params.Limit = maxOrderLimit
	}

	if req.Status != "" {
		if !enum.IsOrderStatus(req.Status) {
			return nil, ErrUnknownOrderStatus
		}
		params.Status = pgtype.Text{String: req.Status, Valid: true}
	}
	if req.TableID != "" {
		id, err := uuid.Parse(req.TableID)
		if err != nil {
			return nil, fmt.Errorf("mesa_id: %w", ErrInvalidID)
		}
		params.TableID = pgtype.UUID{Bytes: id, Valid: true}
	}
	if req.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", req.Date, s.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		params.From = pgtype.Timestamptz{Time: day, Valid: true}
		params.To = pgtype.Timestamptz{Time: day.AddDate(0, 0, 1), Valid: true}
	}

	var orders []database.Order
	err := s.read(ctx, func(store OrderStore) error {
		var err error
		orders, err = store.ListOrders(ctx, params)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		return nil
	})
	return orders, err
}

// OrderDetail is an order with its full item tree.
type OrderDetail struct {
	Order     database.Order
	SubOrders []SubOrderDetail
	Products  []database.ProductLine
}

type SubOrderDetail struct {
	SubOrder database.SubOrder
	Dishes   []DishDetail
}

type DishDetail struct {
	Line   database.DishLine
	Extras []database.ExtraLine
}

func (s *OrderService) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	var detail *OrderDetail
	err := s.read(ctx, func(store OrderStore) error {
		order, err := getOrder(ctx, store, orderID)
		if err != nil {
			return err
		}
		subs, err := store.ListSubOrdersByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list subordenes: %w", err)
		}
		dishes, err := store.ListDishLinesByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list dish lines: %w", err)
		}
		extras, err := store.ListExtraLinesByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list extra lines: %w", err)
		}
		products, err := store.ListProductLinesByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list product lines: %w", err)
		}

		extrasByDish := make(map[uuid.UUID][]database.ExtraLine)
		for _, e := range extras {
			extrasByDish[e.DishLineID] = append(extrasByDish[e.DishLineID], e)
		}
		dishesBySub := make(map[uuid.UUID][]DishDetail)
		for _, d := range dishes {
			ex := extrasByDish[d.ID]
			if ex == nil {
				ex = []database.ExtraLine{}
			}
			dishesBySub[d.SubOrderID] = append(dishesBySub[d.SubOrderID], DishDetail{Line: d, Extras: ex})
		}

		detail = &OrderDetail{Order: order, SubOrders: make([]SubOrderDetail, 0, len(subs)), Products: products}
		for _, sub := range subs {
			ds := dishesBySub[sub.ID]
			if ds == nil {
				ds = []DishDetail{}
			}
			detail.SubOrders = append(detail.SubOrders, SubOrderDetail{SubOrder: sub, Dishes: ds})
		}
		return nil
	})
	return detail, err
}

// SetStatus applies newStatus unconditionally; backward moves are allowed so
// staff can correct mistakes. Closing an order releases its temporal mesa
// once no other open order uses it.
func (s *OrderService) SetStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
	if !enum.IsOrderStatus(newStatus) {
		return nil, ErrUnknownOrderStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := getOrder(ctx, store, orderID); err != nil {
		return nil, err
	}

	order, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: orderID, Status: newStatus})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if enum.IsClosedStatus(newStatus) && order.TableID.Valid {
		if _, err := store.DeleteIdleTemporaryTable(ctx, order.TableID.Bytes); err != nil {
			return nil, fmt.Errorf("release temporary table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(enum.EventOrderUpdated, order.ID, newOrderEvent(order))
	return &order, nil
}

// RecomputeTotal re-derives the persisted total from the current line items.
func (s *OrderService) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	order, err := recomputeTotal(ctx, s.newStore(tx), orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(enum.EventOrderUpdated, order.ID, newOrderEvent(order))
	return &order, nil
}

// --- Helpers ---

// read runs fn inside a transaction that is always rolled back.
func (s *OrderService) read(ctx context.Context, fn func(OrderStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	return fn(s.newStore(tx))
}

func getOrder(ctx context.Context, store OrderStore, id uuid.UUID) (database.Order, error) {
	order, err := store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// getEditableOrder loads an order and rejects it unless it is in Recepcion.
func getEditableOrder(ctx context.Context, store OrderStore, id uuid.UUID) (database.Order, error) {
	order, err := getOrder(ctx, store, id)
	if err != nil {
		return order, err
	}
	if order.Status != enum.OrderStatusRecepcion {
		return order, ErrOrderNotEditable
	}
	return order, nil
}

func recomputeTotal(ctx context.Context, store OrderStore, id uuid.UUID) (database.Order, error) {
	order, err := store.RecomputeOrderTotal(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("recompute total: %w", err)
	}
	return order, nil
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
