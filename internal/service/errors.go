package service

import "errors"

// Error categories. Every error returned by the service for a caller mistake
// wraps exactly one of these, so the HTTP layer can map with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrOrderLocked       = errors.New("order is locked")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrNotReady          = errors.New("item is not ready")
)

// categorized carries a human-readable message while unwrapping to its category.
type categorized struct {
	category error
	msg      string
}

func (e *categorized) Error() string { return e.msg }
func (e *categorized) Unwrap() error { return e.category }

func newError(category error, msg string) error {
	return &categorized{category: category, msg: msg}
}

// Errors returned by the order service.
var (
	ErrOrderNotFound     = newError(ErrNotFound, "order not found")
	ErrSubOrderNotFound  = newError(ErrNotFound, "suborden not found")
	ErrLineNotFound      = newError(ErrNotFound, "line item not found")
	ErrProductNotFound   = newError(ErrNotFound, "product not found")
	ErrDishNotFound      = newError(ErrNotFound, "dish not found")
	ErrStewNotFound      = newError(ErrNotFound, "guiso not found")
	ErrExtraNotFound     = newError(ErrNotFound, "extra not found")
	ErrTableNotFound     = newError(ErrNotFound, "table not found")
	ErrOrderTypeNotFound = newError(ErrNotFound, "order type not found")

	ErrInvalidQuantity    = newError(ErrValidation, "quantity must be >= 1")
	ErrNegativeCost       = newError(ErrValidation, "cost must be >= 0")
	ErrInvalidLineKind    = newError(ErrValidation, "invalid line kind")
	ErrInvalidID          = newError(ErrValidation, "invalid id")
	ErrOrderTypeRequired  = newError(ErrValidation, "tipo_orden_id is required")
	ErrNameRequired       = newError(ErrValidation, "nombre is required")
	ErrOrderNotesTooLong  = newError(ErrValidation, "notas must be at most 500 characters")
	ErrLineNotesTooLong   = newError(ErrValidation, "notas must be at most 200 characters")
	ErrTableConflict      = newError(ErrValidation, "mesa_id and mesa_nueva are mutually exclusive")
	ErrInvalidDate        = newError(ErrValidation, "fecha must be YYYY-MM-DD")
	ErrInvalidPagination  = newError(ErrValidation, "limit and offset must be >= 0")
	ErrUnknownOrderStatus = newError(ErrInvalidStatus, "unrecognized order status")

	ErrOrderNotEditable = newError(ErrOrderLocked, "order items can only change while the order is in Recepcion")
	ErrStockExhausted   = newError(ErrInsufficientStock, "requested quantity exceeds available stock")
	ErrLineNotReady     = newError(ErrNotReady, "item must be marked listo before entregado")
)
