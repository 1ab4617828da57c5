package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*database.Order, error)
	ListOrders(ctx context.Context, req service.ListOrdersRequest) ([]database.Order, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status string) (*database.Order, error)
	RecomputeTotal(ctx context.Context, orderID uuid.UUID) (*database.Order, error)

	AddSubOrder(ctx context.Context, orderID uuid.UUID, name string) (*database.SubOrder, error)
	AddDishToSubOrder(ctx context.Context, subOrderID uuid.UUID, req service.AddDishRequest) (*service.DishLineResult, error)
	AddDishToOrder(ctx context.Context, orderID uuid.UUID, req service.AddDishRequest) (*service.DishLineResult, error)
	AddProductLine(ctx context.Context, orderID uuid.UUID, req service.AddProductRequest) (*service.ProductLineResult, error)
	AddExtraLine(ctx context.Context, dishLineID uuid.UUID, req service.AddExtraRequest) (*database.ExtraLine, error)
	RemoveLine(ctx context.Context, ref database.LineRef) (*database.Order, error)

	MarkReady(ctx context.Context, ref database.LineRef) (*database.LineState, error)
	MarkDelivered(ctx context.Context, ref database.LineRef) (*database.LineState, error)
	DeliveryStatus(ctx context.Context, orderID uuid.UUID) (*service.DeliverySummary, error)
	DeliverAll(ctx context.Context, orderID uuid.UUID) (*service.BulkResult, error)
	MarkAllReady(ctx context.Context, orderID uuid.UUID) (*service.BulkResult, error)
}

var (
	rolesEdit     = []string{enum.RoleAdmin, enum.RoleEncargado, enum.RoleMesero}
	rolesStatus   = []string{enum.RoleAdmin, enum.RoleEncargado, enum.RoleMesero, enum.RoleDespachador, enum.RoleCocinero}
	rolesKitchen  = []string{enum.RoleAdmin, enum.RoleEncargado, enum.RoleCocinero}
	rolesDispatch = []string{enum.RoleAdmin, enum.RoleEncargado, enum.RoleMesero, enum.RoleDespachador}
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /ordenes behind Authenticate.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	edit := middleware.RequireRole(rolesEdit...)
	kitchen := middleware.RequireRole(rolesKitchen...)
	dispatch := middleware.RequireRole(rolesDispatch...)

	r.Get("/", h.List)
	r.With(edit).Post("/nueva", h.Create)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/entrega", h.Delivery)
	r.With(middleware.RequireRole(rolesStatus...)).Put("/{id}/estatus", h.UpdateStatus)
	r.With(middleware.RequireRole(rolesStatus...)).Post("/{id}/recalcular", h.Recompute)
	r.With(kitchen).Put("/{id}/listo-todo", h.MarkAllReady)
	r.With(dispatch).Put("/{id}/entregar-todo", h.DeliverAll)

	r.With(edit).Post("/{id}/suborden", h.AddSubOrder)
	r.With(edit).Post("/{id}/platillo", h.AddDishToOrder)
	r.With(edit).Post("/{id}/producto", h.AddProduct)
	r.With(edit).Post("/suborden/{id}/platillo", h.AddDishToSubOrder)
	r.With(edit).Post("/platillo/{id}/extra", h.AddExtra)
	r.With(edit).Delete("/extra/{id}/extra", h.removeLine(enum.LineKindExtra))

	for _, kind := range enum.LineKinds {
		r.With(kitchen).Put("/"+kind+"/{id}/listo", h.markReady(kind))
		r.With(dispatch).Put("/"+kind+"/{id}/entregado", h.markDelivered(kind))
		r.With(edit).Delete("/"+kind+"/{id}", h.removeLine(kind))
	}
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderTypeID  string `json:"tipo_orden_id"`
	TableID      string `json:"mesa_id"`
	NewTableName string `json:"mesa_nueva"`
	CustomerName string `json:"cliente"`
	Notes        string `json:"notas"`
	Pending      bool   `json:"pendiente"`
}

type updateStatusRequest struct {
	Status string `json:"estatus"`
}

type orderResponse struct {
	ID            uuid.UUID  `json:"id"`
	Folio         string     `json:"folio"`
	DailyNumber   int32      `json:"numero_pedido"`
	OrderTypeID   *uuid.UUID `json:"tipo_orden_id"`
	OrderTypeName string     `json:"tipo_orden"`
	Status        string     `json:"estatus"`
	TableID       *uuid.UUID `json:"mesa_id"`
	TableName     *string    `json:"mesa"`
	CustomerName  *string    `json:"cliente"`
	Notes         *string    `json:"notas"`
	Total         string     `json:"total"`
	CreatedBy     *uuid.UUID `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PaidAt        *time.Time `json:"fecha_pago"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"ordenes"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

type orderDetailResponse struct {
	orderResponse
	SubOrders []subOrderResponse    `json:"subordenes"`
	Products  []productLineResponse `json:"productos"`
}

type subOrderResponse struct {
	ID        uuid.UUID          `json:"id"`
	OrderID   uuid.UUID          `json:"orden_id"`
	Name      string             `json:"nombre"`
	CreatedAt time.Time          `json:"created_at"`
	Dishes    []dishLineResponse `json:"platillos,omitempty"`
}

type deliveryResponse struct {
	OrderID          uuid.UUID            `json:"orden_id"`
	ReadyForDispatch bool                 `json:"listo_para_despacho"`
	Pending          int                  `json:"pendientes"`
	Undelivered      []database.LineState `json:"items_sin_entregar"`
}

type bulkResponse struct {
	Order   orderResponse      `json:"orden"`
	Changed []database.LineRef `json:"actualizados"`
	Skipped []database.LineRef `json:"omitidos"`
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		Folio:         o.Folio,
		DailyNumber:   o.DailyNumber,
		OrderTypeID:   uuidPtr(o.OrderTypeID),
		OrderTypeName: o.OrderTypeName,
		Status:        o.Status,
		TableID:       uuidPtr(o.TableID),
		TableName:     textPtr(o.TableName),
		CustomerName:  textPtr(o.CustomerName),
		Notes:         textPtr(o.Notes),
		Total:         numericToString(o.Total),
		CreatedBy:     uuidPtr(o.CreatedBy),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		PaidAt:        timePtr(o.PaidAt),
	}
}

func toSubOrderResponse(s database.SubOrder) subOrderResponse {
	return subOrderResponse{ID: s.ID, OrderID: s.OrderID, Name: s.Name, CreatedAt: s.CreatedAt}
}

func toOrderDetailResponse(d *service.OrderDetail) orderDetailResponse {
	resp := orderDetailResponse{
		orderResponse: toOrderResponse(d.Order),
		SubOrders:     make([]subOrderResponse, len(d.SubOrders)),
		Products:      make([]productLineResponse, len(d.Products)),
	}
	for i, sub := range d.SubOrders {
		sr := toSubOrderResponse(sub.SubOrder)
		sr.Dishes = make([]dishLineResponse, len(sub.Dishes))
		for j, dish := range sub.Dishes {
			dr := toDishLineResponse(dish.Line)
			dr.Extras = make([]extraLineResponse, len(dish.Extras))
			for k, e := range dish.Extras {
				dr.Extras[k] = toExtraLineResponse(e)
			}
			sr.Dishes[j] = dr
		}
		resp.SubOrders[i] = sr
	}
	for i, p := range d.Products {
		resp.Products[i] = toProductLineResponse(p)
	}
	return resp
}

func toBulkResponse(res *service.BulkResult) bulkResponse {
	return bulkResponse{
		Order:   toOrderResponse(res.Order),
		Changed: res.Changed,
		Skipped: res.Skipped,
	}
}

// --- Handlers ---

// List handles GET /ordenes.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListOrdersRequest{
		Status:  q.Get("estatus"),
		TableID: q.Get("mesa_id"),
		Date:    q.Get("fecha"),
	}

	var err error
	if req.Limit, err = queryInt32(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if req.Offset, err = queryInt32(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}

	resp := orderListResponse{
		Orders: make([]orderResponse, len(orders)),
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	for i, o := range orders {
		resp.Orders[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /ordenes/nueva.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CreatedBy:    claims.UserID,
		OrderTypeID:  req.OrderTypeID,
		TableID:      req.TableID,
		NewTableName: req.NewTableName,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
		Pending:      req.Pending,
	})
	if err != nil {
		writeServiceError(w, r, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /ordenes/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	detail, err := h.svc.GetOrderDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// UpdateStatus handles PUT /ordenes/{id}/estatus.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, r, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// Recompute handles POST /ordenes/{id}/recalcular.
func (h *OrderHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.svc.RecomputeTotal(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "recompute total", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// Delivery handles GET /ordenes/{id}/entrega.
func (h *OrderHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	summary, err := h.svc.DeliveryStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "delivery status", err)
		return
	}

	writeJSON(w, http.StatusOK, deliveryResponse{
		OrderID:          summary.OrderID,
		ReadyForDispatch: summary.ReadyForDispatch,
		Pending:          len(summary.Undelivered),
		Undelivered:      summary.Undelivered,
	})
}

// DeliverAll handles PUT /ordenes/{id}/entregar-todo.
func (h *OrderHandler) DeliverAll(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, "deliver all", h.svc.DeliverAll)
}

// MarkAllReady handles PUT /ordenes/{id}/listo-todo.
func (h *OrderHandler) MarkAllReady(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, "mark all ready", h.svc.MarkAllReady)
}

func (h *OrderHandler) bulk(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, uuid.UUID) (*service.BulkResult, error)) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	res, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}

	writeJSON(w, http.StatusOK, toBulkResponse(res))
}

func queryInt32(s string) (int32, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
