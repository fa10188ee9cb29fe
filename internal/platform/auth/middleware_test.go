package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-please-rotate"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerify(t *testing.T) {
	a, err := NewAuthenticator(testSecret, "")
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	t.Run("valid token yields identity", func(t *testing.T) {
		raw := signToken(t, jwt.MapClaims{
			"sub":   "user-1",
			"role":  "Admin",
			"email": "ada@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		identity, err := a.Verify(raw)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if identity.UserID != "user-1" || identity.Role != "admin" || identity.Email != "ada@example.com" {
			t.Errorf("identity = %+v", identity)
		}
	})

	t.Run("missing role defaults to user", func(t *testing.T) {
		raw := signToken(t, jwt.MapClaims{"sub": "user-2", "exp": time.Now().Add(time.Hour).Unix()})
		identity, err := a.Verify(raw)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if identity.Role != RoleUser {
			t.Errorf("role = %s, want user", identity.Role)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		raw := signToken(t, jwt.MapClaims{"sub": "user-3", "exp": time.Now().Add(-time.Hour).Unix()})
		if _, err := a.Verify(raw); err != ErrTokenExpired {
			t.Errorf("err = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-4"})
		raw, _ := token.SignedString([]byte("other-secret"))
		if _, err := a.Verify(raw); err != ErrTokenInvalid {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		raw := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		if _, err := a.Verify(raw); err != ErrTokenInvalid {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	a, err := NewAuthenticator(testSecret, "")
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("identity missing from context")
		}
		w.Write([]byte(identity.UserID))
	})

	t.Run("no header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		a.RequireAuth()(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Success || body.Error.Code != "unauthenticated" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("valid token passes through", func(t *testing.T) {
		raw := signToken(t, jwt.MapClaims{"sub": "user-9", "exp": time.Now().Add(time.Hour).Unix()})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		a.RequireAuth()(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "user-9" {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("role gate", func(t *testing.T) {
		raw := signToken(t, jwt.MapClaims{"sub": "user-10", "role": "user", "exp": time.Now().Add(time.Hour).Unix()})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		a.RequireAuth(RoleAdmin)(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
