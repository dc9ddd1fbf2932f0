// Package middleware holds the session and role guards for the API.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

// CookieName carries the session token.
const CookieName = "userToken"

type ctxKey struct{}

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// UserFromCtx returns the user attached by Authenticate.
func UserFromCtx(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(models.User)
	return u, ok
}

// WithUser attaches u to ctx.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// TokenFromRequest reads the session cookie, then an Authorization: Bearer
// header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate rejects requests without a valid session.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r.Context(), TokenFromRequest(r))
			if err != nil {
				response.FromError(w, r, err)
				return
			}
			ctx := WithUser(r.Context(), user)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HasRole allows only users holding one of roles. It must run after
// Authenticate.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromCtx(r.Context())
			if !ok || !allowed[user.Role] {
				response.FromError(w, r, services.ErrAdminOnly)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is HasRole(admin).
func RequireAdmin(next http.Handler) http.Handler {
	return HasRole(models.RoleAdmin)(next)
}

// SessionCookie builds the session cookie for token. Production cookies are
// Secure with SameSite=None so a separately hosted client can send them.
func SessionCookie(token string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if config.IsProduction() {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// ClearedCookie expires the session cookie.
func ClearedCookie() *http.Cookie {
	c := SessionCookie("", 0)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}
