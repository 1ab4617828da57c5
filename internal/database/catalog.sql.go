package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getProduct = `-- name: GetProduct :one
SELECT id, nombre, costo, cantidad, activo FROM productos WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(&i.ID, &i.Name, &i.Cost, &i.Stock, &i.IsActive)
	return i, err
}

const decrementProductStock = `-- name: DecrementProductStock :one
UPDATE productos
SET cantidad = cantidad - $2
WHERE id = $1 AND cantidad >= $2
RETURNING cantidad
`

type ProductStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

// DecrementProductStock takes Quantity units in one conditional statement.
// It returns pgx.ErrNoRows when the product is missing or holds fewer units.
func (q *Queries) DecrementProductStock(ctx context.Context, arg ProductStockParams) (int32, error) {
	row := q.db.QueryRow(ctx, decrementProductStock, arg.ID, arg.Quantity)
	var cantidad int32
	err := row.Scan(&cantidad)
	return cantidad, err
}

const incrementProductStock = `-- name: IncrementProductStock :one
UPDATE productos
SET cantidad = cantidad + $2
WHERE id = $1
RETURNING cantidad
`

func (q *Queries) IncrementProductStock(ctx context.Context, arg ProductStockParams) (int32, error) {
	row := q.db.QueryRow(ctx, incrementProductStock, arg.ID, arg.Quantity)
	var cantidad int32
	err := row.Scan(&cantidad)
	return cantidad, err
}

const listProducts = `-- name: ListProducts :many
SELECT id, nombre, costo, cantidad, activo FROM productos WHERE activo ORDER BY nombre
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(&i.ID, &i.Name, &i.Cost, &i.Stock, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createProduct = `-- name: CreateProduct :one
INSERT INTO productos (nombre, costo, cantidad)
VALUES ($1, $2, $3)
RETURNING id, nombre, costo, cantidad, activo
`

type CreateProductParams struct {
	Name  string
	Cost  pgtype.Numeric
	Stock int32
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct, arg.Name, arg.Cost, arg.Stock)
	var i Product
	err := row.Scan(&i.ID, &i.Name, &i.Cost, &i.Stock, &i.IsActive)
	return i, err
}

const getDish = `-- name: GetDish :one
SELECT id, nombre, costo, activo FROM platillos WHERE id = $1
`

func (q *Queries) GetDish(ctx context.Context, id uuid.UUID) (Dish, error) {
	row := q.db.QueryRow(ctx, getDish, id)
	var i Dish
	err := row.Scan(&i.ID, &i.Name, &i.Cost, &i.IsActive)
	return i, err
}

const listDishes = `-- name: ListDishes :many
SELECT id, nombre, costo, activo FROM platillos WHERE activo ORDER BY nombre
`

func (q *Queries) ListDishes(ctx context.Context) ([]Dish, error) {
	rows, err := q.db.Query(ctx, listDishes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Dish{}
	for rows.Next() {
		var i Dish
		if err := rows.Scan(&i.ID, &i.Name, &i.Cost, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createDish = `-- name: CreateDish :one
INSERT INTO platillos (nombre, costo) VALUES ($1, $2)
RETURNING id, nombre, costo, activo
`

func (q *Queries) CreateDish(ctx context.Context, name string, cost pgtype.Numeric) (Dish, error) {
	row := q.db.QueryRow(ctx, createDish, name, cost)
	var i Dish
	err := row.Scan(&i.ID, &i.Name, &i.Cost, &i.IsActive)
	return i, err
}

const getStew = `-- name: GetStew :one
SELECT id, nombre, activo FROM guisos WHERE id = $1
`

func (q *Queries) GetStew(ctx context.Context, id uuid.UUID) (Stew, error) {
	row := q.db.QueryRow(ctx, getStew, id)
	var i Stew
	err := row.Scan(&i.ID, &i.Name, &i.IsActive)
	return i, err
}

const listStews = `-- name: ListStews :many
SELECT id, nombre, activo FROM guisos WHERE activo ORDER BY nombre
`

func (q *Queries) ListStews(ctx context.Context) ([]Stew, error) {
	rows, err := q.db.Query(ctx, listStews)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Stew{}
	for rows.Next() {
		var i Stew
		if err := rows.Scan(&i.ID, &i.Name, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createStew = `-- name: CreateStew :one
INSERT INTO guisos (nombre) VALUES ($1)
RETURNING id, nombre, activo
`

func (q *Queries) CreateStew(ctx context.Context, name string) (Stew, error) {
	row := q.db.QueryRow(ctx, createStew, name)
	var i Stew
	err := row.Scan(&i.ID, &i.Name, &i.IsActive)
	return i, err
}

const getExtra = `-- name: GetExtra :one
SELECT id, nombre, costo, activo FROM extras WHERE id = $1
`

func (q *Queries) GetExtra(ctx context.Context, id uuid.UUID) (Extra, error) {
	row := q.db.QueryRow(ctx, getExtra, id)
	var i Extra
	err := row.Scan(&i.ID, &i.Name, &i.Cost, &i.IsActive)
	return i, err
}

const listExtras = `-- name: ListExtras :many
SELECT id, nombre, costo, activo FROM extras WHERE activo ORDER BY nombre
`

func (q *Queries) ListExtras(ctx context.Context) ([]Extra, error) {
	rows, err := q.db.Query(ctx, listExtras)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Extra{}
	for rows.Next() {
		var i Extra
		if err := rows.Scan(&i.ID, &i.Name, &i.Cost, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createExtra = `-- name: CreateExtra :one
INSERT INTO extras (nombre, costo) VALUES ($1, $2)
RETURNING id, nombre, costo, activo
`

func (q *Queries) CreateExtra(ctx context.Context, name string, cost pgtype.Numeric) (Extra, error) {
	row := q.db.QueryRow(ctx, createExtra, name, cost)
	var i Extra
	err := row.Scan(&i.ID, &i.Name, &i.Cost, &i.IsActive)
	return i, err
}

const getTable = `-- name: GetTable :one
SELECT id, nombre, temporal, created_at FROM mesas WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	row := q.db.QueryRow(ctx, getTable, id)
	var i Table
	err := row.Scan(&i.ID, &i.Name, &i.Temporary, &i.CreatedAt)
	return i, err
}

const listTables = `-- name: ListTables :many
SELECT id, nombre, temporal, created_at FROM mesas ORDER BY temporal, nombre
`

func (q *Queries) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Table{}
	for rows.Next() {
		var i Table
		if err := rows.Scan(&i.ID, &i.Name, &i.Temporary, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createTable = `-- name: CreateTable :one
INSERT INTO mesas (nombre) VALUES ($1)
RETURNING id, nombre, temporal, created_at
`

func (q *Queries) CreateTable(ctx context.Context, name string) (Table, error) {
	row := q.db.QueryRow(ctx, createTable, name)
	var i Table
	err := row.Scan(&i.ID, &i.Name, &i.Temporary, &i.CreatedAt)
	return i, err
}

const getOrderType = `-- name: GetOrderType :one
SELECT id, nombre FROM tipos_orden WHERE id = $1
`

func (q *Queries) GetOrderType(ctx context.Context, id uuid.UUID) (OrderType, error) {
	row := q.db.QueryRow(ctx, getOrderType, id)
	var i OrderType
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const listOrderTypes = `-- name: ListOrderTypes :many
SELECT id, nombre FROM tipos_orden ORDER BY nombre
`

func (q *Queries) ListOrderTypes(ctx context.Context) ([]OrderType, error) {
	rows, err := q.db.Query(ctx, listOrderTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderType{}
	for rows.Next() {
		var i OrderType
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createOrderType = `-- name: CreateOrderType :one
INSERT INTO tipos_orden (nombre) VALUES ($1)
ON CONFLICT (nombre) DO UPDATE SET nombre = EXCLUDED.nombre
RETURNING id, nombre
`

func (q *Queries) CreateOrderType(ctx context.Context, name string) (OrderType, error) {
	row := q.db.QueryRow(ctx, createOrderType, name)
	var i OrderType
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}
