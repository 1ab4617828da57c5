package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsers(ctx context.Context) ([]database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// UserHandler manages staff accounts.
type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes mounts the staff endpoints. Only Admin may touch accounts.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireRole(enum.RoleAdmin))
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type staffResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toStaffResponse(u database.User) staffResponse {
	return staffResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// validateStaff checks the fields shared by create and update and returns
// the message to report, or "" when the input is acceptable.
func validateStaff(email, fullName, role string) string {
	switch {
	case email == "" || fullName == "" || role == "":
		return "email, full_name, and role are required"
	case !strings.Contains(email, "@"):
		return "invalid email format"
	case !enum.IsRole(role):
		return "invalid role"
	}
	return ""
}

// List returns every active staff account.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list users")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]staffResponse, len(users))
	for i, u := range users {
		resp[i] = toStaffResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, password, full_name, and role are required")
		return
	}
	if msg := validateStaff(req.Email, req.FullName, req.Role); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("create user: hash password")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:          req.Email,
		HashedPassword: string(hashed),
		FullName:       req.FullName,
		Role:           req.Role,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		log.Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toStaffResponse(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateStaff(req.Email, req.FullName, req.Role); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:       userID,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeError(w, http.StatusNotFound, "user not found")
		case isUniqueViolation(err):
			writeError(w, http.StatusConflict, "email already exists")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("update user")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(user))
}

// Delete deactivates an account. Orders keep their created_by reference.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == userID {
		writeError(w, http.StatusBadRequest, "cannot deactivate your own account")
		return
	}

	if _, err := h.store.DeactivateUser(r.Context(), userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("deactivate user")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
