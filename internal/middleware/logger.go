package middleware

import (
	"context"
	"net/http"

	"github.com/stunity/backend/pkg/router"
	"github.com/stunity/backend/pkg/xcontext"
)

func Logger() router.MiddlewareFunc {
	return func(ctx context.Context, req *http.Request) (context.Context, error) {
		xcontext.Logger(ctx).Debugf("%s %s", req.Method, req.URL.Path)
		return ctx, nil
	}
}
