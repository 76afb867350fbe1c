package activity

import (
	"context"
	"net/http"

	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
)

type requestInfoKey struct{}

// RequestInfo is the client metadata attached to entries recorded while
// serving a request.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

// WithRequestInfo returns a copy of ctx carrying info.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func requestInfoFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

// Middleware captures the client IP and user agent for later entries.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithRequestInfo(r.Context(), RequestInfo{
			IPAddress: httpx.IPKeyExtractor(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
