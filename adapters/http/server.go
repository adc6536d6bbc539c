package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/satriahrh/pixel-relay/utils/log"
)

const chatPath = "/api/chat"

// ServerOptions configure the middleware chain.
type ServerOptions struct {
	AllowOrigins []string
	RateLimit    float64 // requests per second per client IP
	BodyLimit    string  // e.g. "1M"
}

// NewServer builds the echo instance with the full middleware chain and
// routes mounted. Every error response, including the ones produced by
// middleware, is rendered as {"error": "..."}.
func NewServer(h *ChatHandler, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	if opts.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(opts.RateLimit))))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		// preflight on the chat route must reach the handler and get 405
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodOptions && c.Request().URL.Path == chatPath
		},
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
		MaxAge: 86400,
	}))
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	Register(e, h)
	return e
}

// jsonErrorHandler replaces echo's {"message": ...} body with the relay
// envelope. echo.HTTPError keeps its status; anything else is a 500.
func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if he.Internal != nil {
			log.WithCtx(c.Request().Context()).Debug("middleware error", zap.Error(he.Internal))
		}
		msg = fmt.Sprint(he.Message)
	} else {
		log.WithCtx(c.Request().Context()).Error("unhandled error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Error: msg})
	}
	if err != nil {
		log.WithCtx(c.Request().Context()).Error("writing error response", zap.Error(err))
	}
}
