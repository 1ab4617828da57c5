package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, folio, numero_pedido, tipo_orden_id, tipo_orden_nombre, estatus,
    mesa_id, mesa_nombre, cliente, notas, total, created_by, created_at, updated_at, fecha_pago`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.Folio,
		&i.DailyNumber,
		&i.OrderTypeID,
		&i.OrderTypeName,
		&i.Status,
		&i.TableID,
		&i.TableName,
		&i.CustomerName,
		&i.Notes,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.PaidAt,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO ordenes (folio, numero_pedido, tipo_orden_id, tipo_orden_nombre, estatus,
    mesa_id, mesa_nombre, cliente, notas, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	Folio         string
	DailyNumber   int32
	OrderTypeID   pgtype.UUID
	OrderTypeName string
	Status        string
	TableID       pgtype.UUID
	TableName     pgtype.Text
	CustomerName  pgtype.Text
	Notes         pgtype.Text
	CreatedBy     pgtype.UUID
	CreatedAt     time.Time
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.Folio,
		arg.DailyNumber,
		arg.OrderTypeID,
		arg.OrderTypeName,
		arg.Status,
		arg.TableID,
		arg.TableName,
		arg.CustomerName,
		arg.Notes,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM ordenes
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + `
FROM ordenes
WHERE ($1::text IS NULL OR estatus = $1)
  AND ($2::uuid IS NULL OR mesa_id = $2)
  AND ($3::timestamptz IS NULL OR created_at >= $3)
  AND ($4::timestamptz IS NULL OR created_at < $4)
ORDER BY created_at DESC
LIMIT $5 OFFSET $6
`

type ListOrdersParams struct {
	Status  pgtype.Text
	TableID pgtype.UUID
	From    pgtype.Timestamptz
	To      pgtype.Timestamptz
	Limit   int32
	Offset  int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.Status,
		arg.TableID,
		arg.From,
		arg.To,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
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

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE ordenes
SET estatus = $2,
    updated_at = now(),
    fecha_pago = CASE WHEN $2 = 'Pagada' THEN COALESCE(fecha_pago, now()) ELSE fecha_pago END
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

// UpdateOrderStatus sets the status unconditionally. The first transition to
// Pagada stamps fecha_pago; later ones keep it.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}

const recomputeOrderTotal = `-- name: RecomputeOrderTotal :one
UPDATE ordenes o
SET total = (
        SELECT COALESCE(SUM(dp.importe), 0)
        FROM detalle_productos dp
        WHERE dp.orden_id = o.id
    ) + (
        SELECT COALESCE(SUM(dl.importe), 0)
        FROM detalle_platillos dl
        JOIN subordenes s ON s.id = dl.suborden_id
        WHERE s.orden_id = o.id
    ),
    updated_at = now()
WHERE o.id = $1
RETURNING ` + orderColumns

// RecomputeOrderTotal re-derives ordenes.total from the product lines and the
// dish lines of the order's subordenes. Extras are not part of the total.
func (q *Queries) RecomputeOrderTotal(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, recomputeOrderTotal, id))
}

const createTemporaryTable = `-- name: CreateTemporaryTable :one
INSERT INTO mesas (nombre, temporal)
VALUES ($1, TRUE)
RETURNING id, nombre, temporal, created_at
`

func (q *Queries) CreateTemporaryTable(ctx context.Context, name string) (Table, error) {
	row := q.db.QueryRow(ctx, createTemporaryTable, name)
	var i Table
	err := row.Scan(&i.ID, &i.Name, &i.Temporary, &i.CreatedAt)
	return i, err
}

const deleteIdleTemporaryTable = `-- name: DeleteIdleTemporaryTable :execrows
DELETE FROM mesas m
WHERE m.id = $1
  AND m.temporal
  AND NOT EXISTS (
      SELECT 1 FROM ordenes o
      WHERE o.mesa_id = m.id
        AND o.estatus NOT IN ('Pagada', 'Cancelado')
  )
`

// DeleteIdleTemporaryTable removes a placeholder table once no open order
// references it. Permanent tables are never touched.
func (q *Queries) DeleteIdleTemporaryTable(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteIdleTemporaryTable, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
