package session

import (
	"context"
	"net/http"
)

type ctxKey string

const operatorIDKey ctxKey = "operator_id"

// OperatorID returns the operator id the middleware put on the context, or "".
func OperatorID(ctx context.Context) string {
	if val, ok := ctx.Value(operatorIDKey).(string); ok {
		return val
	}
	return ""
}

func WithOperatorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operatorIDKey, id)
}

// OperatorMiddleware copies the X-Operator-Id header onto the request context.
func OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Operator-Id"); id != "" {
			r = r.WithContext(WithOperatorID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
