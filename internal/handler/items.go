package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
)

type addSubOrderRequest struct {
	Name string `json:"nombre"`
}

type addDishRequest struct {
	DishID   string `json:"platillo_id"`
	StewID   string `json:"guiso_id"`
	Quantity int32  `json:"cantidad"`
	Notes    string `json:"notas"`
}

type addProductRequest struct {
	ProductID string `json:"producto_id"`
	Quantity  int32  `json:"cantidad"`
}

type addExtraRequest struct {
	ExtraID  string `json:"extra_id"`
	Quantity int32  `json:"cantidad"`
}

type dishLineResponse struct {
	ID         uuid.UUID           `json:"id"`
	SubOrderID uuid.UUID           `json:"suborden_id"`
	DishID     uuid.UUID           `json:"platillo_id"`
	DishName   string              `json:"platillo"`
	StewID     *uuid.UUID          `json:"guiso_id"`
	StewName   *string             `json:"guiso"`
	UnitCost   string              `json:"costo_unitario"`
	Quantity   int32               `json:"cantidad"`
	Amount     string              `json:"importe"`
	Notes      *string             `json:"notas"`
	Ready      bool                `json:"listo"`
	Delivered  bool                `json:"entregado"`
	CreatedAt  time.Time           `json:"created_at"`
	Extras     []extraLineResponse `json:"extras,omitempty"`
}

type productLineResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"orden_id"`
	ProductID   uuid.UUID `json:"producto_id"`
	ProductName string    `json:"producto"`
	UnitCost    string    `json:"costo_unitario"`
	Quantity    int32     `json:"cantidad"`
	Amount      string    `json:"importe"`
	Ready       bool      `json:"listo"`
	Delivered   bool      `json:"entregado"`
	CreatedAt   time.Time `json:"created_at"`
}

type extraLineResponse struct {
	ID         uuid.UUID `json:"id"`
	DishLineID uuid.UUID `json:"detalle_platillo_id"`
	ExtraID    uuid.UUID `json:"extra_id"`
	ExtraName  string    `json:"extra"`
	UnitCost   string    `json:"costo_unitario"`
	Quantity   int32     `json:"cantidad"`
	Amount     string    `json:"importe"`
	Ready      bool      `json:"listo"`
	Delivered  bool      `json:"entregado"`
	CreatedAt  time.Time `json:"created_at"`
}

// lineResponse pairs a created line with the order total it produced.
type lineResponse struct {
	Line  interface{}   `json:"item"`
	Order orderResponse `json:"orden"`
}

type productLineResultResponse struct {
	lineResponse
	Remaining int32 `json:"existencia"`
}

func toDishLineResponse(l database.DishLine) dishLineResponse {
	return dishLineResponse{
		ID:         l.ID,
		SubOrderID: l.SubOrderID,
		DishID:     l.DishID,
		DishName:   l.DishName,
		StewID:     uuidPtr(l.StewID),
		StewName:   textPtr(l.StewName),
		UnitCost:   numericToString(l.UnitCost),
		Quantity:   l.Quantity,
		Amount:     numericToString(l.Amount),
		Notes:      textPtr(l.Notes),
		Ready:      l.Ready,
		Delivered:  l.Delivered,
		CreatedAt:  l.CreatedAt,
	}
}

func toProductLineResponse(l database.ProductLine) productLineResponse {
	return productLineResponse{
		ID:          l.ID,
		OrderID:     l.OrderID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		UnitCost:    numericToString(l.UnitCost),
		Quantity:    l.Quantity,
		Amount:      numericToString(l.Amount),
		Ready:       l.Ready,
		Delivered:   l.Delivered,
		CreatedAt:   l.CreatedAt,
	}
}

func toExtraLineResponse(l database.ExtraLine) extraLineResponse {
	return extraLineResponse{
		ID:         l.ID,
		DishLineID: l.DishLineID,
		ExtraID:    l.ExtraID,
		ExtraName:  l.ExtraName,
		UnitCost:   numericToString(l.UnitCost),
		Quantity:   l.Quantity,
		Amount:     numericToString(l.Amount),
		Ready:      l.Ready,
		Delivered:  l.Delivered,
		CreatedAt:  l.CreatedAt,
	}
}

// AddSubOrder handles POST /ordenes/{id}/suborden.
func (h *OrderHandler) AddSubOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req addSubOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.svc.AddSubOrder(r.Context(), id, req.Name)
	if err != nil {
		writeServiceError(w, r, "add suborden", err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubOrderResponse(*sub))
}

// AddDishToSubOrder handles POST /ordenes/suborden/{id}/platillo.
func (h *OrderHandler) AddDishToSubOrder(w http.ResponseWriter, r *http.Request) {
	h.addDish(w, r, "suborden", h.svc.AddDishToSubOrder)
}

// AddDishToOrder handles POST /ordenes/{id}/platillo, creating the order's
// first suborden when it has none.
func (h *OrderHandler) AddDishToOrder(w http.ResponseWriter, r *http.Request) {
	h.addDish(w, r, "order", h.svc.AddDishToOrder)
}

func (h *OrderHandler) addDish(w http.ResponseWriter, r *http.Request, parent string,
	fn func(ctx context.Context, id uuid.UUID, req service.AddDishRequest) (*service.DishLineResult, error)) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+parent+" ID")
		return
	}

	var req addDishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := fn(r.Context(), id, service.AddDishRequest{
		DishID:   req.DishID,
		StewID:   req.StewID,
		Quantity: req.Quantity,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, "add dish line", err)
		return
	}

	writeJSON(w, http.StatusCreated, lineResponse{
		Line:  toDishLineResponse(res.Line),
		Order: toOrderResponse(res.Order),
	})
}

// AddProduct handles POST /ordenes/{id}/producto.
func (h *OrderHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req addProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.AddProductLine(r.Context(), id, service.AddProductRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, "add product line", err)
		return
	}

	writeJSON(w, http.StatusCreated, productLineResultResponse{
		lineResponse: lineResponse{
			Line:  toProductLineResponse(res.Line),
			Order: toOrderResponse(res.Order),
		},
		Remaining: res.Remaining,
	})
}

// AddExtra handles POST /ordenes/platillo/{id}/extra.
func (h *OrderHandler) AddExtra(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dish line ID")
		return
	}

	var req addExtraRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	line, err := h.svc.AddExtraLine(r.Context(), id, service.AddExtraRequest{
		ExtraID:  req.ExtraID,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, "add extra line", err)
		return
	}

	writeJSON(w, http.StatusCreated, toExtraLineResponse(*line))
}

// removeLine handles DELETE /ordenes/{kind}/{id} and DELETE /ordenes/extra/{id}/extra.
func (h *OrderHandler) removeLine(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+kind+" ID")
			return
		}

		order, err := h.svc.RemoveLine(r.Context(), database.LineRef{Kind: kind, ID: id})
		if err != nil {
			writeServiceError(w, r, "remove "+kind, err)
			return
		}

		writeJSON(w, http.StatusOK, toOrderResponse(*order))
	}
}

// markReady handles PUT /ordenes/{kind}/{id}/listo.
func (h *OrderHandler) markReady(kind string) http.HandlerFunc {
	return h.lineState(kind, "mark ready", h.svc.MarkReady)
}

// markDelivered handles PUT /ordenes/{kind}/{id}/entregado.
func (h *OrderHandler) markDelivered(kind string) http.HandlerFunc {
	return h.lineState(kind, "mark delivered", h.svc.MarkDelivered)
}

func (h *OrderHandler) lineState(kind, op string,
	fn func(context.Context, database.LineRef) (*database.LineState, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+kind+" ID")
			return
		}

		state, err := fn(r.Context(), database.LineRef{Kind: kind, ID: id})
		if err != nil {
			writeServiceError(w, r, op, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}
