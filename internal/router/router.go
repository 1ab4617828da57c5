package router

import (
	"net/http"

	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/logging"
	mw "github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/service"
	"github.com/comanda-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ service.Notifier = (*ws.Hub)(nil)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	handler.NewAuthHandler(queries, cfg.JWTSecret).RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/ordenes", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderSvc := service.NewOrderService(
		pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		queries,
		service.WithNotifier(hub),
		service.WithLocation(cfg.Location()),
	)

	// Protected routes (require authentication); per-route roles are applied
	// by each handler's RegisterRoutes.
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/ordenes", handler.NewOrderHandler(orderSvc).RegisterRoutes)
		r.Route("/catalogo", handler.NewCatalogHandler(queries).RegisterRoutes)
		r.Route("/usuarios", handler.NewUserHandler(queries).RegisterRoutes)
	})

	return r
}
