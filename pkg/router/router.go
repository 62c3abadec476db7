package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc enriches the request context before the handler runs.
// Returning an error aborts the request with that error's envelope.
type MiddlewareFunc func(ctx context.Context, req *http.Request) (context.Context, error)

type Router struct {
	Inner gin.IRouter

	baseCtx     context.Context
	middlewares []MiddlewareFunc
}

// New creates a router whose handlers run on top of baseCtx. The base
// context carries the configs, logger, and database connection.
func New(baseCtx context.Context) *Router {
	return &Router{Inner: gin.New(), baseCtx: baseCtx}
}

func (r *Router) Use(middleware MiddlewareFunc) {
	r.middlewares = append(r.middlewares, middleware)
}

func (r *Router) Group(pattern string) *Router {
	return &Router{
		Inner:       r.Inner.Group(pattern),
		baseCtx:     r.baseCtx,
		middlewares: append([]MiddlewareFunc{}, r.middlewares...),
	}
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = ginCtx.ShouldBindQuery(&req)
		default:
			if ginCtx.Request.ContentLength > 0 {
				err = ginCtx.ShouldBindJSON(&req)
			}
		}

		if err != nil {
			writeResponse(ginCtx, nil, errBadRequestBody)
			return
		}

		ctx := router.baseCtx
		for _, middleware := range router.middlewares {
			ctx, err = middleware(ctx, ginCtx.Request)
			if err != nil {
				writeResponse(ginCtx, nil, err)
				return
			}
		}

		resp, err := handler(ctx, &req)
		writeResponse(ginCtx, resp, err)
	}
}
