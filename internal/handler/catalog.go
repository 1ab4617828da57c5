package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/comanda-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CatalogStore defines the database methods needed by catalog handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]database.Product, error)
	ListDishes(ctx context.Context) ([]database.Dish, error)
	ListStews(ctx context.Context) ([]database.Stew, error)
	ListExtras(ctx context.Context) ([]database.Extra, error)
	ListTables(ctx context.Context) ([]database.Table, error)
	ListOrderTypes(ctx context.Context) ([]database.OrderType, error)
}

// catalogLister loads one catalog and shapes it for the response.
type catalogLister func(ctx context.Context, store CatalogStore) (interface{}, error)

// catalogs maps each /catalogo/{tipo} name to its lister.
var catalogs = map[string]catalogLister{
	"productos": func(ctx context.Context, s CatalogStore) (interface{}, error) {
		rows, err := s.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalogItemResponse, len(rows))
		for i, p := range rows {
			cost, stock := numericToString(p.Cost), p.Stock
			out[i] = catalogItemResponse{ID: p.ID, Name: p.Name, Cost: &cost, Stock: &stock}
		}
		return out, nil
	},
	"platillos": func(ctx context.Context, s CatalogStore) (interface{}, error) {
		rows, err := s.ListDishes(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalogItemResponse, len(rows))
		for i, d := range rows {
			cost := numericToString(d.Cost)
			out[i] = catalogItemResponse{ID: d.ID, Name: d.Name, Cost: &cost}
		}
		return out, nil
	},
	"guisos": func(ctx context.Context, s CatalogStore) (interface{}, error) {
		rows, err := s.ListStews(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalogItemResponse, len(rows))
		for i, g := range rows {
			out[i] = catalogItemResponse{ID: g.ID, Name: g.Name}
		}
		return out, nil
	},
	"extras": func(ctx context.Context, s CatalogStore) (interface{}, error) {
		rows, err := s.ListExtras(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalogItemResponse, len(rows))
		for i, e := range rows {
			cost := numericToString(e.Cost)
			out[i] = catalogItemResponse{ID: e.ID, Name: e.Name, Cost: &cost}
		}
		return out, nil
	},
	"mesas": func(ctx context.Context, s CatalogStore) (interface{}, error) {
		rows, err := s.ListTables(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalogItemResponse, len(rows))
		for i, m := range rows {
			temp := m.Temporary
			out[i] = catalogItemResponse{ID: m.ID, Name: m.Name, Temporary: &temp}
		}
		return out, nil
	},
	"tipos-orden": func(ctx context.Context, s CatalogStore) (interface{}, error) {
		rows, err := s.ListOrderTypes(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalogItemResponse, len(rows))
		for i, t := range rows {
			out[i] = catalogItemResponse{ID: t.ID, Name: t.Name}
		}
		return out, nil
	},
}

type catalogItemResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"nombre"`
	Cost      *string   `json:"costo,omitempty"`
	Stock     *int32    `json:"cantidad,omitempty"`
	Temporary *bool     `json:"temporal,omitempty"`
}

// CatalogHandler serves the read-only catalog lookups.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers catalog endpoints. Expected to be mounted at /catalogo.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/{tipo}", h.List)
}

// Index handles GET /catalogo and lists the catalog names.
func (h *CatalogHandler) Index(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, names)
}

// List handles GET /catalogo/{tipo}.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tipo")
	lister, ok := catalogs[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown catalog: "+name)
		return
	}

	items, err := lister(r.Context(), h.store)
	if err != nil {
		writeServiceError(w, r, "list catalog "+name, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
