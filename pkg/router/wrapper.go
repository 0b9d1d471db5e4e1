package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/idutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = idutil.NewRequestID()
		}

		ctx := withValues(c.Request.Context(), router.ctx)
		ctx = xcontext.WithRequestID(ctx, requestID)
		ctx = xcontext.WithLogger(ctx, xcontext.Logger(ctx).With("request_id", requestID))
		c.Header("X-Request-Id", requestID)

		start := time.Now()
		defer func() {
			xcontext.Logger(ctx).Debugf("%s %s done in %s", method, c.FullPath(), time.Since(start))
		}()

		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = c.ShouldBindQuery(&req)
		case http.MethodPost:
			err = c.ShouldBindJSON(&req)
		default:
			err = errors.New("unsupported method")
		}

		if err != nil {
			writeResponse(ctx, c, newErrorResponse(errorx.New(errorx.BadRequest, "Invalid request: %v", err)))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			writeResponse(ctx, c, newErrorResponse(err))
			return
		}

		writeResponse(ctx, c, newResponse(resp))
	}
}

// valuesContext takes cancellation from the request and values from the
// request first, then from the router.
type valuesContext struct {
	context.Context
	values context.Context
}

func withValues(ctx, values context.Context) context.Context {
	return valuesContext{Context: ctx, values: values}
}

func (c valuesContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}

	return c.values.Value(key)
}
