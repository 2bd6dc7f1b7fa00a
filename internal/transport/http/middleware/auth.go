package middleware

import (
	"context"
	"net/http"
	"strings"

	"paysheet/internal/auth"
	"paysheet/internal/requestctx"
	"paysheet/internal/transport/http/api"
)

type TokenParser interface {
	Authenticate(token string) (*auth.Claims, error)
}

// Auth attaches the bearer token's user to the request context. Requests
// without a valid token pass through anonymous; RequireAuth rejects them.
func Auth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := parser.Authenticate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestctx.WithUser(r.Context(), requestctx.User{
				UserID:     claims.UserID,
				Email:      claims.Email,
				Role:       claims.Role,
				EmployeeID: claims.EmployeeID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) (requestctx.User, bool) {
	return requestctx.GetUser(ctx)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
