package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/middleware"
    "github.com/iliyamo/activity-tracker/internal/model"
)

// RegisterSupervisor registers project management, supervision and report
// endpoints.  Admins are accepted too.
func RegisterSupervisor(e *echo.Echo, h Handlers, opts Options) {
    g := newScope(e,
        middleware.JWTAuth(opts.JWTSecret),
        middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin),
        opts.rateLimit(),
    )

    g.POST("/proyectos", h.Projects.Create)
    g.PUT("/proyectos/:id", h.Projects.Update)
    g.PATCH("/proyectos/:id/desactivar", h.Projects.Deactivate)
    g.PATCH("/proyectos/:id/reactivar", h.Projects.Reactivate)
    g.POST("/proyectos/:id/asignaciones", h.Projects.Assign)

    g.GET("/usuarios/supervisados", h.Users.Supervised)
    g.GET("/estadisticas/usuarios/:id", h.Stats.User, opts.cache())
    g.GET("/informes/supervisado/:id/excel", h.Reports.Supervised, opts.reportLimit())
}

// RegisterAdmin registers the endpoints reserved to admins.
func RegisterAdmin(e *echo.Echo, h Handlers, opts Options) {
    g := newScope(e,
        middleware.JWTAuth(opts.JWTSecret),
        middleware.RequireRole(model.RoleAdmin),
        opts.rateLimit(),
    )
    g.PATCH("/usuarios/:id/supervisor", h.Users.SetSupervisor)
}
