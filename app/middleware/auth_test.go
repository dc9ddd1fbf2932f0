package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/services"
)

type stubAuth map[string]models.User

func (s stubAuth) Authenticate(_ context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, services.ErrAuthRequired
	}
	u, ok := s[token]
	if !ok {
		return models.User{}, services.ErrAuthFailed
	}
	return u, nil
}

var users = stubAuth{
	"admin-token": {ID: "1", Role: models.RoleAdmin},
	"user-token":  {ID: "2", Role: models.RoleUser},
}

func guarded() http.Handler {
	return Authenticate(users)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromCtx(r.Context())
		w.Write([]byte(u.ID)) //nolint:errcheck
	})))
}

func TestTokenFromRequestPrefersCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", TokenFromRequest(r))
}

func TestGuards(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"no token", "", http.StatusUnauthorized, "Authentication required"},
		{"bad token", "forged", http.StatusUnauthorized, "Authentication failed"},
		{"non admin", "user-token", http.StatusForbidden, "Admin access only"},
		{"admin", "admin-token", http.StatusOK, "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.token != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tc.token})
			}
			rec := httptest.NewRecorder()
			guarded().ServeHTTP(rec, r)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestClearedCookie(t *testing.T) {
	c := ClearedCookie()
	assert.Equal(t, CookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
	assert.True(t, c.HttpOnly)
}
