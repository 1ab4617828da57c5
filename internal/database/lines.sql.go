package database

import (
	"context"
	"fmt"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ── Dish lines ──

const dishLineColumns = `dl.id, dl.suborden_id, dl.platillo_id, dl.platillo_nombre, dl.guiso_id, dl.guiso_nombre,
    dl.costo, dl.cantidad, dl.importe, dl.notas, dl.listo, dl.entregado, dl.created_at`

func scanDishLine(row pgx.Row) (DishLine, error) {
	var i DishLine
	err := row.Scan(
		&i.ID,
		&i.SubOrderID,
		&i.DishID,
		&i.DishName,
		&i.StewID,
		&i.StewName,
		&i.UnitCost,
		&i.Quantity,
		&i.Amount,
		&i.Notes,
		&i.Ready,
		&i.Delivered,
		&i.CreatedAt,
	)
	return i, err
}

const createDishLine = `-- name: CreateDishLine :one
INSERT INTO detalle_platillos AS dl (suborden_id, platillo_id, platillo_nombre, guiso_id, guiso_nombre,
    costo, cantidad, importe, notas)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + dishLineColumns

type CreateDishLineParams struct {
	SubOrderID uuid.UUID
	DishID     uuid.UUID
	DishName   string
	StewID     pgtype.UUID
	StewName   pgtype.Text
	UnitCost   pgtype.Numeric
	Quantity   int32
	Amount     pgtype.Numeric
	Notes      pgtype.Text
}

func (q *Queries) CreateDishLine(ctx context.Context, arg CreateDishLineParams) (DishLine, error) {
	row := q.db.QueryRow(ctx, createDishLine,
		arg.SubOrderID,
		arg.DishID,
		arg.DishName,
		arg.StewID,
		arg.StewName,
		arg.UnitCost,
		arg.Quantity,
		arg.Amount,
		arg.Notes,
	)
	return scanDishLine(row)
}

const listDishLinesByOrder = `-- name: ListDishLinesByOrder :many
SELECT ` + dishLineColumns + `
FROM detalle_platillos dl
JOIN subordenes s ON s.id = dl.suborden_id
WHERE s.orden_id = $1
ORDER BY dl.created_at, dl.id
`

func (q *Queries) ListDishLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]DishLine, error) {
	rows, err := q.db.Query(ctx, listDishLinesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DishLine{}
	for rows.Next() {
		i, err := scanDishLine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Product lines ──

const productLineColumns = `id, orden_id, producto_id, producto_nombre, costo, cantidad, importe,
    listo, entregado, created_at`

func scanProductLine(row pgx.Row) (ProductLine, error) {
	var i ProductLine
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.ProductName,
		&i.UnitCost,
		&i.Quantity,
		&i.Amount,
		&i.Ready,
		&i.Delivered,
		&i.CreatedAt,
	)
	return i, err
}

const createProductLine = `-- name: CreateProductLine :one
INSERT INTO detalle_productos (orden_id, producto_id, producto_nombre, costo, cantidad, importe)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productLineColumns

type CreateProductLineParams struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitCost    pgtype.Numeric
	Quantity    int32
	Amount      pgtype.Numeric
}

func (q *Queries) CreateProductLine(ctx context.Context, arg CreateProductLineParams) (ProductLine, error) {
	row := q.db.QueryRow(ctx, createProductLine,
		arg.OrderID,
		arg.ProductID,
		arg.ProductName,
		arg.UnitCost,
		arg.Quantity,
		arg.Amount,
	)
	return scanProductLine(row)
}

const getProductLine = `-- name: GetProductLine :one
SELECT ` + productLineColumns + `
FROM detalle_productos
WHERE id = $1
`

func (q *Queries) GetProductLine(ctx context.Context, id uuid.UUID) (ProductLine, error) {
	return scanProductLine(q.db.QueryRow(ctx, getProductLine, id))
}

const listProductLinesByOrder = `-- name: ListProductLinesByOrder :many
SELECT ` + productLineColumns + `
FROM detalle_productos
WHERE orden_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListProductLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]ProductLine, error) {
	rows, err := q.db.Query(ctx, listProductLinesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ProductLine{}
	for rows.Next() {
		i, err := scanProductLine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Extra lines ──

const extraLineColumns = `e.id, e.detalle_platillo_id, e.extra_id, e.extra_nombre, e.costo, e.cantidad, e.importe,
    e.listo, e.entregado, e.created_at`

func scanExtraLine(row pgx.Row) (ExtraLine, error) {
	var i ExtraLine
	err := row.Scan(
		&i.ID,
		&i.DishLineID,
		&i.ExtraID,
		&i.ExtraName,
		&i.UnitCost,
		&i.Quantity,
		&i.Amount,
		&i.Ready,
		&i.Delivered,
		&i.CreatedAt,
	)
	return i, err
}

const createExtraLine = `-- name: CreateExtraLine :one
INSERT INTO detalle_extras AS e (detalle_platillo_id, extra_id, extra_nombre, costo, cantidad, importe)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + extraLineColumns

type CreateExtraLineParams struct {
	DishLineID uuid.UUID
	ExtraID    uuid.UUID
	ExtraName  string
	UnitCost   pgtype.Numeric
	Quantity   int32
	Amount     pgtype.Numeric
}

func (q *Queries) CreateExtraLine(ctx context.Context, arg CreateExtraLineParams) (ExtraLine, error) {
	row := q.db.QueryRow(ctx, createExtraLine,
		arg.DishLineID,
		arg.ExtraID,
		arg.ExtraName,
		arg.UnitCost,
		arg.Quantity,
		arg.Amount,
	)
	return scanExtraLine(row)
}

const listExtraLinesByOrder = `-- name: ListExtraLinesByOrder :many
SELECT ` + extraLineColumns + `
FROM detalle_extras e
JOIN detalle_platillos dl ON dl.id = e.detalle_platillo_id
JOIN subordenes s ON s.id = dl.suborden_id
WHERE s.orden_id = $1
ORDER BY e.created_at, e.id
`

func (q *Queries) ListExtraLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]ExtraLine, error) {
	rows, err := q.db.Query(ctx, listExtraLinesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExtraLine{}
	for rows.Next() {
		i, err := scanExtraLine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Kind-generic line state ──

// lineSQL holds the per-kind statements. Reads and flag updates resolve the
// owning order so callers can enforce order-level rules and publish events.
type lineSQL struct {
	get       string
	ready     string
	delivered string
	delete    string
}

var lineQueries = map[string]lineSQL{
	enum.LineKindProducto: {
		get: `SELECT id, orden_id, listo, entregado FROM detalle_productos WHERE id = $1`,
		ready: `UPDATE detalle_productos SET listo = TRUE WHERE id = $1
RETURNING id, orden_id, listo, entregado`,
		delivered: `UPDATE detalle_productos SET entregado = TRUE WHERE id = $1
RETURNING id, orden_id, listo, entregado`,
		delete: `DELETE FROM detalle_productos WHERE id = $1`,
	},
	enum.LineKindPlatillo: {
		get: `SELECT dl.id, s.orden_id, dl.listo, dl.entregado
FROM detalle_platillos dl JOIN subordenes s ON s.id = dl.suborden_id
WHERE dl.id = $1`,
		ready: `UPDATE detalle_platillos dl SET listo = TRUE
FROM subordenes s WHERE dl.id = $1 AND s.id = dl.suborden_id
RETURNING dl.id, s.orden_id, dl.listo, dl.entregado`,
		delivered: `UPDATE detalle_platillos dl SET entregado = TRUE
FROM subordenes s WHERE dl.id = $1 AND s.id = dl.suborden_id
RETURNING dl.id, s.orden_id, dl.listo, dl.entregado`,
		delete: `DELETE FROM detalle_platillos WHERE id = $1`,
	},
	enum.LineKindExtra: {
		get: `SELECT e.id, s.orden_id, e.listo, e.entregado
FROM detalle_extras e
JOIN detalle_platillos dl ON dl.id = e.detalle_platillo_id
JOIN subordenes s ON s.id = dl.suborden_id
WHERE e.id = $1`,
		ready: `UPDATE detalle_extras e SET listo = TRUE
FROM detalle_platillos dl JOIN subordenes s ON s.id = dl.suborden_id
WHERE e.id = $1 AND dl.id = e.detalle_platillo_id
RETURNING e.id, s.orden_id, e.listo, e.entregado`,
		delivered: `UPDATE detalle_extras e SET entregado = TRUE
FROM detalle_platillos dl JOIN subordenes s ON s.id = dl.suborden_id
WHERE e.id = $1 AND dl.id = e.detalle_platillo_id
RETURNING e.id, s.orden_id, e.listo, e.entregado`,
		delete: `DELETE FROM detalle_extras WHERE id = $1`,
	},
}

func lineStatements(kind string) (lineSQL, error) {
	stmts, ok := lineQueries[kind]
	if !ok {
		return lineSQL{}, fmt.Errorf("unknown line kind %q", kind)
	}
	return stmts, nil
}

func scanLineState(kind string, row pgx.Row) (LineState, error) {
	i := LineState{Kind: kind}
	err := row.Scan(&i.ID, &i.OrderID, &i.Ready, &i.Delivered)
	return i, err
}

func (q *Queries) GetLineState(ctx context.Context, ref LineRef) (LineState, error) {
	stmts, err := lineStatements(ref.Kind)
	if err != nil {
		return LineState{}, err
	}
	return scanLineState(ref.Kind, q.db.QueryRow(ctx, stmts.get, ref.ID))
}

func (q *Queries) MarkLineReady(ctx context.Context, ref LineRef) (LineState, error) {
	stmts, err := lineStatements(ref.Kind)
	if err != nil {
		return LineState{}, err
	}
	return scanLineState(ref.Kind, q.db.QueryRow(ctx, stmts.ready, ref.ID))
}

func (q *Queries) MarkLineDelivered(ctx context.Context, ref LineRef) (LineState, error) {
	stmts, err := lineStatements(ref.Kind)
	if err != nil {
		return LineState{}, err
	}
	return scanLineState(ref.Kind, q.db.QueryRow(ctx, stmts.delivered, ref.ID))
}

// DeleteLine removes a line item. Extras of a deleted dish line go with it.
func (q *Queries) DeleteLine(ctx context.Context, ref LineRef) (int64, error) {
	stmts, err := lineStatements(ref.Kind)
	if err != nil {
		return 0, err
	}
	result, err := q.db.Exec(ctx, stmts.delete, ref.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
