package middleware

import (
	"context"
	"net/http"

	"github.com/storefront-bff/internal/pkg/visitor"
)

// VisitorHeader carries the anonymous visitor id in both directions.
const VisitorHeader = "X-Visitor-ID"

// Visitor resolves who the request belongs to and echoes the visitor id
// back so the client can persist it. Mount after OptionalAuth.
func Visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := ""
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			userID = claims.SubjectID()
		}
		ident := visitor.Resolve(userID, r.Header.Get(VisitorHeader))
		w.Header().Set(VisitorHeader, ident.ID)
		next.ServeHTTP(w, r.WithContext(WithVisitor(r.Context(), ident)))
	})
}

// WithVisitor stores ident in ctx.
func WithVisitor(ctx context.Context, ident visitor.Identity) context.Context {
	return context.WithValue(ctx, visitorKey, ident)
}

func VisitorFromContext(ctx context.Context) (visitor.Identity, bool) {
	v, ok := ctx.Value(visitorKey).(visitor.Identity)
	return v, ok
}
