package middleware

import (
	"context"
	"net/http"

	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/router"
	"github.com/stunity/backend/pkg/xcontext"
)

// The auth layer in front of this service verifies the caller and
// injects the user id in this header.
const userIDHeader = "X-User-Id"

func AuthVerifier() router.MiddlewareFunc {
	return func(ctx context.Context, req *http.Request) (context.Context, error) {
		userID := req.Header.Get(userIDHeader)
		if userID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You must be authenticated")
		}

		return xcontext.WithRequestUserID(ctx, userID), nil
	}
}
