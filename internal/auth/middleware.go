package auth

import (
	"context"
	"net/http"
	"strings"

	"daritana-backend/internal/analytics"
)

type ctxKey string

const (
	userIDKey ctxKey = "user_id"
	firmIDKey ctxKey = "firm_id"
)

type Middleware struct {
	secret []byte
}

func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(h, "Bearer ")
		userID, firmID, err := ParseToken(m.secret, tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, firmIDKey, firmID)

		// user_id rides along for the event log
		ctx = analytics.WithUserID(ctx, userID)

		next(w, r.WithContext(ctx))
	}
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	uid, ok := v.(int)
	return uid, ok
}

func FirmIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(firmIDKey)
	if v == nil {
		return 0, false
	}
	fid, ok := v.(int)
	return fid, ok
}
