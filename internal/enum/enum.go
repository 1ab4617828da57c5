package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPendiente   = "Pendiente"
	OrderStatusRecepcion   = "Recepcion"
	OrderStatusPreparacion = "Preparacion"
	OrderStatusSurtida     = "Surtida"
	OrderStatusEntregada   = "Entregada"
	OrderStatusPagada      = "Pagada"
	OrderStatusCancelado   = "Cancelado"
)

// OrderStatuses lists every recognized status in nominal forward order,
// with Cancelado last.
var OrderStatuses = []string{
	OrderStatusPendiente,
	OrderStatusRecepcion,
	OrderStatusPreparacion,
	OrderStatusSurtida,
	OrderStatusEntregada,
	OrderStatusPagada,
	OrderStatusCancelado,
}

// IsOrderStatus reports whether s is a recognized order status.
func IsOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsClosedStatus reports whether an order in status s no longer holds a table.
func IsClosedStatus(s string) bool {
	return s == OrderStatusPagada || s == OrderStatusCancelado
}

// ── Line kinds ──

const (
	LineKindProducto = "producto"
	LineKindPlatillo = "platillo"
	LineKindExtra    = "extra"
)

// LineKinds lists the three line item kinds.
var LineKinds = []string{LineKindProducto, LineKindPlatillo, LineKindExtra}

// IsLineKind reports whether s names a line item kind.
func IsLineKind(s string) bool {
	switch s {
	case LineKindProducto, LineKindPlatillo, LineKindExtra:
		return true
	}
	return false
}

// ── Staff roles (CHECK constrained in DB) ──

const (
	RoleAdmin       = "Admin"
	RoleEncargado   = "Encargado"
	RoleMesero      = "Mesero"
	RoleDespachador = "Despachador"
	RoleCocinero    = "Cocinero"
)

// Roles lists every staff role.
var Roles = []string{RoleAdmin, RoleEncargado, RoleMesero, RoleDespachador, RoleCocinero}

// IsRole reports whether s is a recognized staff role.
func IsRole(s string) bool {
	for _, v := range Roles {
		if v == s {
			return true
		}
	}
	return false
}

// ── Push events ──

const (
	EventOrderCreated = "orden.creada"
	EventOrderUpdated = "orden.actualizada"
	EventItemUpdated  = "item.actualizado"
)

// ── Counter keys ──

const (
	CounterOrder          = "orden"
	CounterDailyPedidoFmt = "pedido-%s" // %s = YYYYMMDD
)
