package database

import (
	"context"
)

const incrementCounter = `-- name: IncrementCounter :one
INSERT INTO contadores (clave, valor)
VALUES ($1, 1)
ON CONFLICT (clave) DO UPDATE SET valor = contadores.valor + 1
RETURNING valor
`

// IncrementCounter creates the counter at 1 or bumps it by one, returning the
// post-increment value. The upsert is a single statement, so concurrent
// callers never observe the same value.
func (q *Queries) IncrementCounter(ctx context.Context, key string) (int64, error) {
	row := q.db.QueryRow(ctx, incrementCounter, key)
	var valor int64
	err := row.Scan(&valor)
	return valor, err
}
