package router

import (
    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/iliyamo/activity-tracker/internal/handler"
    "github.com/iliyamo/activity-tracker/internal/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
    Auth       *handler.AuthHandler
    Activities *handler.ActivityHandler
    Comments   *handler.CommentHandler
    Documents  *handler.DocumentHandler
    Projects   *handler.ProjectHandler
    Stats      *handler.StatsHandler
    Reports    *handler.ReportHandler
    Users      *handler.UserHandler
}

// Options carries the middleware shared by route groups.  A nil
// middleware disables that layer.
type Options struct {
    JWTSecret   string
    RateLimit   echo.MiddlewareFunc
    ReportLimit echo.MiddlewareFunc // extra bucket for report exports
    Cache       echo.MiddlewareFunc
}

func orPass(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
    if mw == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return mw
}

func (o Options) rateLimit() echo.MiddlewareFunc   { return orPass(o.RateLimit) }
func (o Options) reportLimit() echo.MiddlewareFunc { return orPass(o.ReportLimit) }
func (o Options) cache() echo.MiddlewareFunc       { return orPass(o.Cache) }

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
    e.GET("/healthz", handler.Health(db))
    e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers /auth.  Register, login, refresh and logout need
// no session; /auth/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opts Options) {
    g := e.Group("/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)
    g.GET("/me", a.Me, middleware.JWTAuth(opts.JWTSecret), opts.rateLimit())
}

// Register wires every route of the API.
func Register(e *echo.Echo, h Handlers, db handler.Pinger, opts Options) {
    RegisterRoutes(e, db)
    RegisterAuth(e, h.Auth, opts)
    RegisterMember(e, h, opts)
    RegisterSupervisor(e, h, opts)
    RegisterAdmin(e, h, opts)
}
