package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/inventario/internal/core"
	mw "github.com/JonMunkholm/inventario/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so import and
// bulk-edit logs can name who triggered them.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, mw.ClientIP(r), r.UserAgent())
}
