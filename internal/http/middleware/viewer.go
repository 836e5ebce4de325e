package middleware

import (
	"context"
	"net/http"

	"shipment-console/internal/domain"
)

type viewerKey struct{}

// WithViewer stores the authenticated viewer in ctx.
func WithViewer(ctx context.Context, v domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFrom returns the authenticated viewer.
func ViewerFrom(ctx context.Context) (domain.Viewer, bool) {
	v, ok := ctx.Value(viewerKey{}).(domain.Viewer)
	return v, ok
}

// ViewerKey is a ratelimit.KeyFunc charging requests to the authenticated viewer.
func ViewerKey(r *http.Request) string {
	if v, ok := ViewerFrom(r.Context()); ok {
		return v.Key()
	}
	return ""
}
