package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock store ---

type mockUserStore struct {
	users map[uuid.UUID]database.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]database.User, error) {
	var out []database.User
	for _, u := range m.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	for _, u := range m.users {
		if u.Email == arg.Email {
			return database.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := database.User{
		ID:             uuid.New(),
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
	u, ok := m.users[arg.ID]
	if !ok || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	for id, other := range m.users {
		if id != arg.ID && other.Email == arg.Email {
			return database.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u.Email, u.FullName, u.Role = arg.Email, arg.FullName, arg.Role
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) DeactivateUser(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	u.IsActive = false
	m.users[id] = u
	return id, nil
}

func (m *mockUserStore) seed(email, role string) database.User {
	u := database.User{ID: uuid.New(), Email: email, FullName: "Seeded", Role: role, IsActive: true}
	m.users[u.ID] = u
	return u
}

func setupUserRouter(store *mockUserStore) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/usuarios", handler.NewUserHandler(store).RegisterRoutes)
	return r
}

// --- Tests ---

func TestUsers_AdminOnly(t *testing.T) {
	router := setupUserRouter(newMockUserStore())
	for _, role := range []string{enum.RoleEncargado, enum.RoleMesero, enum.RoleDespachador, enum.RoleCocinero} {
		rr := doAuthRequest(t, router, "GET", "/usuarios/", nil, testClaims(role))
		assertStatus(t, rr, http.StatusForbidden)
	}
}

func TestUsers_List(t *testing.T) {
	store := newMockUserStore()
	store.seed("a@test.com", enum.RoleMesero)
	gone := store.seed("b@test.com", enum.RoleCocinero)
	gone.IsActive = false
	store.users[gone.ID] = gone

	rr := doAuthRequest(t, setupUserRouter(store), "GET", "/usuarios/", nil, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusOK)

	env := decodeEnvelope(t, rr)
	list, ok := env["data"].([]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("expected one active user, got %v", env["data"])
	}
	if _, leaked := list[0].(map[string]interface{})["hashed_password"]; leaked {
		t.Error("hashed_password must not be exposed")
	}
}

func TestUsers_Create(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doAuthRequest(t, router, "POST", "/usuarios/", map[string]string{
		"email":     "  Cocina@Test.com ",
		"password":  "secreto",
		"full_name": "Ana Cocina",
		"role":      enum.RoleCocinero,
	}, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusCreated)

	data := decodeResponse(t, rr)
	if data["email"] != "cocina@test.com" {
		t.Errorf("email: got %v", data["email"])
	}
	if data["role"] != enum.RoleCocinero {
		t.Errorf("role: got %v", data["role"])
	}

	id, _ := uuid.Parse(data["id"].(string))
	stored := store.users[id]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("secreto")); err != nil {
		t.Errorf("password not hashed with bcrypt: %v", err)
	}
}

func TestUsers_CreateValidation(t *testing.T) {
	store := newMockUserStore()
	store.seed("taken@test.com", enum.RoleMesero)
	router := setupUserRouter(store)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing password", map[string]string{"email": "x@test.com", "full_name": "X", "role": enum.RoleMesero}, http.StatusBadRequest},
		{"missing role", map[string]string{"email": "x@test.com", "password": "p", "full_name": "X"}, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "nope", "password": "p", "full_name": "X", "role": enum.RoleMesero}, http.StatusBadRequest},
		{"unknown role", map[string]string{"email": "x@test.com", "password": "p", "full_name": "X", "role": "Cajero"}, http.StatusBadRequest},
		{"duplicate email", map[string]string{"email": "taken@test.com", "password": "p", "full_name": "X", "role": enum.RoleMesero}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doAuthRequest(t, router, "POST", "/usuarios/", tt.body, testClaims(enum.RoleAdmin))
			assertStatus(t, rr, tt.want)
		})
	}
}

func TestUsers_Update(t *testing.T) {
	store := newMockUserStore()
	u := store.seed("mesero@test.com", enum.RoleMesero)
	store.seed("otro@test.com", enum.RoleMesero)
	router := setupUserRouter(store)

	rr := doAuthRequest(t, router, "PUT", "/usuarios/"+u.ID.String(), map[string]string{
		"email": "mesero@test.com", "full_name": "Promovido", "role": enum.RoleEncargado,
	}, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusOK)
	if got := store.users[u.ID].Role; got != enum.RoleEncargado {
		t.Errorf("role: got %q", got)
	}

	rr = doAuthRequest(t, router, "PUT", "/usuarios/"+u.ID.String(), map[string]string{
		"email": "otro@test.com", "full_name": "X", "role": enum.RoleMesero,
	}, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusConflict)

	rr = doAuthRequest(t, router, "PUT", "/usuarios/"+uuid.New().String(), map[string]string{
		"email": "z@test.com", "full_name": "Z", "role": enum.RoleMesero,
	}, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusNotFound)

	rr = doAuthRequest(t, router, "PUT", "/usuarios/not-a-uuid", map[string]string{}, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestUsers_Delete(t *testing.T) {
	store := newMockUserStore()
	u := store.seed("mesero@test.com", enum.RoleMesero)
	router := setupUserRouter(store)

	rr := doAuthRequest(t, router, "DELETE", "/usuarios/"+u.ID.String(), nil, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusNoContent)
	if store.users[u.ID].IsActive {
		t.Error("user should be deactivated, not removed")
	}

	rr = doAuthRequest(t, router, "DELETE", "/usuarios/"+u.ID.String(), nil, testClaims(enum.RoleAdmin))
	assertStatus(t, rr, http.StatusNotFound)
}

func TestUsers_DeleteSelf(t *testing.T) {
	store := newMockUserStore()
	admin := store.seed("admin@test.com", enum.RoleAdmin)
	claims := testClaims(enum.RoleAdmin)
	claims.UserID = admin.ID

	rr := doAuthRequest(t, setupUserRouter(store), "DELETE", "/usuarios/"+admin.ID.String(), nil, claims)
	assertStatus(t, rr, http.StatusBadRequest)
	if !store.users[admin.ID].IsActive {
		t.Error("admin must stay active")
	}
}
