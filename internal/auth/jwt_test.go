package auth_test

import (
	"testing"

	"github.com/comanda-pos/api/internal/auth"
	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := auth.GenerateToken(secret, userID, "ana@fonda.mx", "Ana", "Mesero")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user ID: got %v, want %v", claims.UserID, userID)
	}
	if claims.Email != "ana@fonda.mx" {
		t.Errorf("email: got %v", claims.Email)
	}
	if claims.Name != "Ana" {
		t.Errorf("name: got %v", claims.Name)
	}
	if claims.Role != "Mesero" {
		t.Errorf("role: got %v", claims.Role)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", uuid.New(), "a@b.c", "A", "Mesero")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := auth.ValidateToken("secret-b", token); err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	if _, err := auth.ValidateToken("secret", "not-a-jwt"); err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateRefreshToken("secret", userID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	got, err := auth.ValidateRefreshToken("secret", token)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if got != userID {
		t.Errorf("subject: got %v, want %v", got, userID)
	}
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	token, err := auth.GenerateToken("secret", uuid.New(), "a@b.c", "A", "Admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	// Access tokens carry no subject, so the refresh parser cannot yield a user.
	if _, err := auth.ValidateRefreshToken("secret", token); err == nil {
		t.Fatal("expected error using an access token as refresh token")
	}
}
