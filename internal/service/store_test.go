package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock transaction ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr error
	commits   int
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error { return nil }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// --- In-memory store ---

// memStore is an in-memory OrderStore and CounterStore. Writes apply
// immediately; the service only fails before its first write in the paths
// these tests exercise, so rollback is not modelled.
type memStore struct {
	mu sync.Mutex

	tick time.Time

	counters   map[string]int64
	counterErr error

	orderTypes map[uuid.UUID]database.OrderType
	tables     map[uuid.UUID]database.Table
	products   map[uuid.UUID]database.Product
	dishes     map[uuid.UUID]database.Dish
	stews      map[uuid.UUID]database.Stew
	extras     map[uuid.UUID]database.Extra

	orders       map[uuid.UUID]database.Order
	subOrders    []database.SubOrder
	dishLines    []database.DishLine
	productLines []database.ProductLine
	extraLines   []database.ExtraLine
}

func newMemStore() *memStore {
	return &memStore{
		tick:       time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),
		counters:   map[string]int64{},
		orderTypes: map[uuid.UUID]database.OrderType{},
		tables:     map[uuid.UUID]database.Table{},
		products:   map[uuid.UUID]database.Product{},
		dishes:     map[uuid.UUID]database.Dish{},
		stews:      map[uuid.UUID]database.Stew{},
		extras:     map[uuid.UUID]database.Extra{},
		orders:     map[uuid.UUID]database.Order{},
	}
}

func (m *memStore) next() time.Time {
	m.tick = m.tick.Add(time.Second)
	return m.tick
}

// seed helpers

func (m *memStore) addOrderType(name string) database.OrderType {
	t := database.OrderType{ID: uuid.New(), Name: name}
	m.orderTypes[t.ID] = t
	return t
}

func (m *memStore) addTable(name string, temporary bool) database.Table {
	t := database.Table{ID: uuid.New(), Name: name, Temporary: temporary, CreatedAt: m.next()}
	m.tables[t.ID] = t
	return t
}

func (m *memStore) addProduct(name, cost string, stock int32) database.Product {
	p := database.Product{ID: uuid.New(), Name: name, Cost: makeNumeric(cost), Stock: stock, IsActive: true}
	m.products[p.ID] = p
	return p
}

func (m *memStore) addDish(name, cost string) database.Dish {
	d := database.Dish{ID: uuid.New(), Name: name, Cost: makeNumeric(cost), IsActive: true}
	m.dishes[d.ID] = d
	return d
}

func (m *memStore) addStew(name string) database.Stew {
	s := database.Stew{ID: uuid.New(), Name: name, IsActive: true}
	m.stews[s.ID] = s
	return s
}

func (m *memStore) addExtra(name, cost string) database.Extra {
	e := database.Extra{ID: uuid.New(), Name: name, Cost: makeNumeric(cost), IsActive: true}
	m.extras[e.ID] = e
	return e
}

func (m *memStore) setStatus(orderID uuid.UUID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.orders[orderID]
	o.Status = status
	m.orders[orderID] = o
}

func (m *memStore) stock(productID uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].Stock
}

func (m *memStore) lineCount(orderID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.productLines {
		if p.OrderID == orderID {
			n++
		}
	}
	for _, d := range m.dishLines {
		if m.subOrderOwner(d.SubOrderID) == orderID {
			n++
			for _, e := range m.extraLines {
				if e.DishLineID == d.ID {
					n++
				}
			}
		}
	}
	return n
}

// expectedTotal sums product and dish importes straight from the line tables.
func (m *memStore) expectedTotal(orderID uuid.UUID) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumLines(orderID)
}

func (m *memStore) sumLines(orderID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.productLines {
		if p.OrderID == orderID {
			total = total.Add(numericToDecimal(p.Amount))
		}
	}
	for _, d := range m.dishLines {
		if m.subOrderOwner(d.SubOrderID) == orderID {
			total = total.Add(numericToDecimal(d.Amount))
		}
	}
	return total
}

func (m *memStore) subOrderOwner(id uuid.UUID) uuid.UUID {
	for _, s := range m.subOrders {
		if s.ID == id {
			return s.OrderID
		}
	}
	return uuid.Nil
}

func (m *memStore) dishOwner(id uuid.UUID) (uuid.UUID, bool) {
	for _, d := range m.dishLines {
		if d.ID == id {
			return m.subOrderOwner(d.SubOrderID), true
		}
	}
	return uuid.Nil, false
}

// CounterStore

func (m *memStore) IncrementCounter(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counterErr != nil {
		return 0, m.counterErr
	}
	m.counters[key]++
	return m.counters[key], nil
}

// OrderStore: orders

func (m *memStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := database.Order{
		ID:            uuid.New(),
		Folio:         arg.Folio,
		DailyNumber:   arg.DailyNumber,
		OrderTypeID:   arg.OrderTypeID,
		OrderTypeName: arg.OrderTypeName,
		Status:        arg.Status,
		TableID:       arg.TableID,
		TableName:     arg.TableName,
		CustomerName:  arg.CustomerName,
		Notes:         arg.Notes,
		Total:         makeNumeric("0.00"),
		CreatedBy:     arg.CreatedBy,
		CreatedAt:     arg.CreatedAt,
		UpdatedAt:     arg.CreatedAt,
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *memStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []database.Order{}
	for _, o := range m.orders {
		if arg.Status.Valid && o.Status != arg.Status.String {
			continue
		}
		if arg.TableID.Valid && (!o.TableID.Valid || o.TableID.Bytes != arg.TableID.Bytes) {
			continue
		}
		if arg.From.Valid && o.CreatedAt.Before(arg.From.Time) {
			continue
		}
		if arg.To.Valid && !o.CreatedAt.Before(arg.To.Time) {
			continue
		}
		items = append(items, o)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	start := int(arg.Offset)
	if start > len(items) {
		start = len(items)
	}
	end := start + int(arg.Limit)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	o.UpdatedAt = m.next()
	if arg.Status == enum.OrderStatusPagada && !o.PaidAt.Valid {
		o.PaidAt = pgtype.Timestamptz{Time: o.UpdatedAt, Valid: true}
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) RecomputeOrderTotal(ctx context.Context, id uuid.UUID) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Total = decimalToNumeric(m.sumLines(id))
	o.UpdatedAt = m.next()
	m.orders[id] = o
	return o, nil
}

// OrderStore: catalog

func (m *memStore) GetOrderType(ctx context.Context, id uuid.UUID) (database.OrderType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.orderTypes[id]
	if !ok {
		return database.OrderType{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *memStore) GetTable(ctx context.Context, id uuid.UUID) (database.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *memStore) CreateTemporaryTable(ctx context.Context, name string) (database.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addTable(name, true), nil
}

func (m *memStore) DeleteIdleTemporaryTable(ctx context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok || !t.Temporary {
		return 0, nil
	}
	for _, o := range m.orders {
		if o.TableID.Valid && o.TableID.Bytes == id && !enum.IsClosedStatus(o.Status) {
			return 0, nil
		}
	}
	delete(m.tables, id)
	return 1, nil
}

func (m *memStore) GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memStore) GetDish(ctx context.Context, id uuid.UUID) (database.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dishes[id]
	if !ok {
		return database.Dish{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *memStore) GetStew(ctx context.Context, id uuid.UUID) (database.Stew, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stews[id]
	if !ok {
		return database.Stew{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *memStore) GetExtra(ctx context.Context, id uuid.UUID) (database.Extra, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.extras[id]
	if !ok {
		return database.Extra{}, pgx.ErrNoRows
	}
	return e, nil
}

func (m *memStore) DecrementProductStock(ctx context.Context, arg database.ProductStockParams) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[arg.ID]
	if !ok || p.Stock < arg.Quantity {
		return 0, pgx.ErrNoRows
	}
	p.Stock -= arg.Quantity
	m.products[arg.ID] = p
	return p.Stock, nil
}

func (m *memStore) IncrementProductStock(ctx context.Context, arg database.ProductStockParams) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[arg.ID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	p.Stock += arg.Quantity
	m.products[arg.ID] = p
	return p.Stock, nil
}

// OrderStore: subordenes and lines

func (m *memStore) CreateSubOrder(ctx context.Context, arg database.CreateSubOrderParams) (database.SubOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := database.SubOrder{ID: uuid.New(), OrderID: arg.OrderID, Name: arg.Name, CreatedAt: m.next()}
	m.subOrders = append(m.subOrders, s)
	return s, nil
}

func (m *memStore) GetSubOrder(ctx context.Context, id uuid.UUID) (database.SubOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subOrders {
		if s.ID == id {
			return s, nil
		}
	}
	return database.SubOrder{}, pgx.ErrNoRows
}

func (m *memStore) GetFirstSubOrder(ctx context.Context, orderID uuid.UUID) (database.SubOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subOrders {
		if s.OrderID == orderID {
			return s, nil
		}
	}
	return database.SubOrder{}, pgx.ErrNoRows
}

func (m *memStore) ListSubOrdersByOrder(ctx context.Context, orderID uuid.UUID) ([]database.SubOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []database.SubOrder{}
	for _, s := range m.subOrders {
		if s.OrderID == orderID {
			items = append(items, s)
		}
	}
	return items, nil
}

func (m *memStore) CreateDishLine(ctx context.Context, arg database.CreateDishLineParams) (database.DishLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := database.DishLine{
		ID:         uuid.New(),
		SubOrderID: arg.SubOrderID,
		DishID:     arg.DishID,
		DishName:   arg.DishName,
		StewID:     arg.StewID,
		StewName:   arg.StewName,
		UnitCost:   arg.UnitCost,
		Quantity:   arg.Quantity,
		Amount:     arg.Amount,
		Notes:      arg.Notes,
		CreatedAt:  m.next(),
	}
	m.dishLines = append(m.dishLines, l)
	return l, nil
}

func (m *memStore) CreateProductLine(ctx context.Context, arg database.CreateProductLineParams) (database.ProductLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := database.ProductLine{
		ID:          uuid.New(),
		OrderID:     arg.OrderID,
		ProductID:   arg.ProductID,
		ProductName: arg.ProductName,
		UnitCost:    arg.UnitCost,
		Quantity:    arg.Quantity,
		Amount:      arg.Amount,
		CreatedAt:   m.next(),
	}
	m.productLines = append(m.productLines, l)
	return l, nil
}

func (m *memStore) CreateExtraLine(ctx context.Context, arg database.CreateExtraLineParams) (database.ExtraLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := database.ExtraLine{
		ID:         uuid.New(),
		DishLineID: arg.DishLineID,
		ExtraID:    arg.ExtraID,
		ExtraName:  arg.ExtraName,
		UnitCost:   arg.UnitCost,
		Quantity:   arg.Quantity,
		Amount:     arg.Amount,
		CreatedAt:  m.next(),
	}
	m.extraLines = append(m.extraLines, l)
	return l, nil
}

func (m *memStore) GetProductLine(ctx context.Context, id uuid.UUID) (database.ProductLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.productLines {
		if l.ID == id {
			return l, nil
		}
	}
	return database.ProductLine{}, pgx.ErrNoRows
}

func (m *memStore) ListDishLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.DishLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []database.DishLine{}
	for _, l := range m.dishLines {
		if m.subOrderOwner(l.SubOrderID) == orderID {
			items = append(items, l)
		}
	}
	return items, nil
}

func (m *memStore) ListProductLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ProductLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []database.ProductLine{}
	for _, l := range m.productLines {
		if l.OrderID == orderID {
			items = append(items, l)
		}
	}
	return items, nil
}

func (m *memStore) ListExtraLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ExtraLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []database.ExtraLine{}
	for _, l := range m.extraLines {
		if owner, ok := m.dishOwner(l.DishLineID); ok && owner == orderID {
			items = append(items, l)
		}
	}
	return items, nil
}

// lineFlags returns pointers to the flags of a line and its owning order.
func (m *memStore) lineFlags(ref database.LineRef) (ready, delivered *bool, orderID uuid.UUID, err error) {
	switch ref.Kind {
	case enum.LineKindProducto:
		for i := range m.productLines {
			if m.productLines[i].ID == ref.ID {
				l := &m.productLines[i]
				return &l.Ready, &l.Delivered, l.OrderID, nil
			}
		}
	case enum.LineKindPlatillo:
		for i := range m.dishLines {
			if m.dishLines[i].ID == ref.ID {
				l := &m.dishLines[i]
				return &l.Ready, &l.Delivered, m.subOrderOwner(l.SubOrderID), nil
			}
		}
	case enum.LineKindExtra:
		for i := range m.extraLines {
			if m.extraLines[i].ID == ref.ID {
				l := &m.extraLines[i]
				owner, _ := m.dishOwner(l.DishLineID)
				return &l.Ready, &l.Delivered, owner, nil
			}
		}
	default:
		return nil, nil, uuid.Nil, errors.New("unknown line kind")
	}
	return nil, nil, uuid.Nil, pgx.ErrNoRows
}

func (m *memStore) GetLineState(ctx context.Context, ref database.LineRef) (database.LineState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ready, delivered, orderID, err := m.lineFlags(ref)
	if err != nil {
		return database.LineState{}, err
	}
	return database.LineState{Kind: ref.Kind, ID: ref.ID, OrderID: orderID, Ready: *ready, Delivered: *delivered}, nil
}

func (m *memStore) MarkLineReady(ctx context.Context, ref database.LineRef) (database.LineState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ready, delivered, orderID, err := m.lineFlags(ref)
	if err != nil {
		return database.LineState{}, err
	}
	*ready = true
	return database.LineState{Kind: ref.Kind, ID: ref.ID, OrderID: orderID, Ready: *ready, Delivered: *delivered}, nil
}

func (m *memStore) MarkLineDelivered(ctx context.Context, ref database.LineRef) (database.LineState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ready, delivered, orderID, err := m.lineFlags(ref)
	if err != nil {
		return database.LineState{}, err
	}
	*delivered = true
	return database.LineState{Kind: ref.Kind, ID: ref.ID, OrderID: orderID, Ready: *ready, Delivered: *delivered}, nil
}

func (m *memStore) DeleteLine(ctx context.Context, ref database.LineRef) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch ref.Kind {
	case enum.LineKindProducto:
		for i, l := range m.productLines {
			if l.ID == ref.ID {
				m.productLines = append(m.productLines[:i], m.productLines[i+1:]...)
				return 1, nil
			}
		}
	case enum.LineKindPlatillo:
		for i, l := range m.dishLines {
			if l.ID == ref.ID {
				m.dishLines = append(m.dishLines[:i], m.dishLines[i+1:]...)
				kept := m.extraLines[:0]
				for _, e := range m.extraLines {
					if e.DishLineID != ref.ID {
						kept = append(kept, e)
					}
				}
				m.extraLines = kept
				return 1, nil
			}
		}
	case enum.LineKindExtra:
		for i, l := range m.extraLines {
			if l.ID == ref.ID {
				m.extraLines = append(m.extraLines[:i], m.extraLines[i+1:]...)
				return 1, nil
			}
		}
	}
	return 0, nil
}

// --- Recording notifier ---

type published struct {
	event   string
	orderID uuid.UUID
	payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingNotifier) Publish(event string, orderID uuid.UUID, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{event: event, orderID: orderID, payload: payload})
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.event
	}
	return out
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}
