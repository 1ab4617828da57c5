package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, email, hashed_password, full_name, role, is_active, created_at`

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + `
FROM users
WHERE email = $1 AND is_active
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.HashedPassword, &i.FullName, &i.Role, &i.IsActive, &i.CreatedAt)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + `
FROM users
WHERE id = $1 AND is_active
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.HashedPassword, &i.FullName, &i.Role, &i.IsActive, &i.CreatedAt)
	return i, err
}

const upsertUser = `-- name: UpsertUser :one
INSERT INTO users (email, hashed_password, full_name, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE
SET hashed_password = EXCLUDED.hashed_password,
    full_name = EXCLUDED.full_name,
    role = EXCLUDED.role,
    is_active = TRUE
RETURNING ` + userColumns

type UpsertUserParams struct {
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error) {
	row := q.db.QueryRow(ctx, upsertUser, arg.Email, arg.HashedPassword, arg.FullName, arg.Role)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.HashedPassword, &i.FullName, &i.Role, &i.IsActive, &i.CreatedAt)
	return i, err
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + `
FROM users
WHERE is_active
ORDER BY full_name
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(&i.ID, &i.Email, &i.HashedPassword, &i.FullName, &i.Role, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, hashed_password, full_name, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Email, arg.HashedPassword, arg.FullName, arg.Role)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.HashedPassword, &i.FullName, &i.Role, &i.IsActive, &i.CreatedAt)
	return i, err
}

const updateUser = `-- name: UpdateUser :one
UPDATE users
SET email = $2, full_name = $3, role = $4
WHERE id = $1 AND is_active
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Role     string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUser, arg.ID, arg.Email, arg.FullName, arg.Role)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.HashedPassword, &i.FullName, &i.Role, &i.IsActive, &i.CreatedAt)
	return i, err
}

const deactivateUser = `-- name: DeactivateUser :one
UPDATE users
SET is_active = FALSE
WHERE id = $1 AND is_active
RETURNING id
`

func (q *Queries) DeactivateUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deactivateUser, id)
	var i uuid.UUID
	err := row.Scan(&i)
	return i, err
}
