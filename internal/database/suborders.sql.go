package database

import (
	"context"

	"github.com/google/uuid"
)

const createSubOrder = `-- name: CreateSubOrder :one
INSERT INTO subordenes (orden_id, nombre)
VALUES ($1, $2)
RETURNING id, orden_id, nombre, created_at
`

type CreateSubOrderParams struct {
	OrderID uuid.UUID
	Name    string
}

func (q *Queries) CreateSubOrder(ctx context.Context, arg CreateSubOrderParams) (SubOrder, error) {
	row := q.db.QueryRow(ctx, createSubOrder, arg.OrderID, arg.Name)
	var i SubOrder
	err := row.Scan(&i.ID, &i.OrderID, &i.Name, &i.CreatedAt)
	return i, err
}

const getSubOrder = `-- name: GetSubOrder :one
SELECT id, orden_id, nombre, created_at
FROM subordenes
WHERE id = $1
`

func (q *Queries) GetSubOrder(ctx context.Context, id uuid.UUID) (SubOrder, error) {
	row := q.db.QueryRow(ctx, getSubOrder, id)
	var i SubOrder
	err := row.Scan(&i.ID, &i.OrderID, &i.Name, &i.CreatedAt)
	return i, err
}

const getFirstSubOrder = `-- name: GetFirstSubOrder :one
SELECT id, orden_id, nombre, created_at
FROM subordenes
WHERE orden_id = $1
ORDER BY created_at, id
LIMIT 1
`

// GetFirstSubOrder returns the oldest suborden of an order, or pgx.ErrNoRows.
func (q *Queries) GetFirstSubOrder(ctx context.Context, orderID uuid.UUID) (SubOrder, error) {
	row := q.db.QueryRow(ctx, getFirstSubOrder, orderID)
	var i SubOrder
	err := row.Scan(&i.ID, &i.OrderID, &i.Name, &i.CreatedAt)
	return i, err
}

const listSubOrdersByOrder = `-- name: ListSubOrdersByOrder :many
SELECT id, orden_id, nombre, created_at
FROM subordenes
WHERE orden_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListSubOrdersByOrder(ctx context.Context, orderID uuid.UUID) ([]SubOrder, error) {
	rows, err := q.db.Query(ctx, listSubOrdersByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SubOrder{}
	for rows.Next() {
		var i SubOrder
		if err := rows.Scan(&i.ID, &i.OrderID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
