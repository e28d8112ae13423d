package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/middleware"
    "github.com/iliyamo/activity-tracker/internal/model"
)

// RegisterMember registers the endpoints open to every authenticated role.
// Ownership is checked by the services.
func RegisterMember(e *echo.Echo, h Handlers, opts Options) {
    g := newScope(e,
        middleware.JWTAuth(opts.JWTSecret),
        middleware.RequireRole(model.RoleEmployee, model.RoleSupervisor, model.RoleAdmin),
        opts.rateLimit(),
    )

    g.POST("/actividades", h.Activities.Create)
    g.GET("/actividades", h.Activities.List)
    g.POST("/actividades/enviar", h.Activities.Submit)
    g.GET("/actividades/:id", h.Activities.Get)
    g.PUT("/actividades/:id", h.Activities.Update)
    g.DELETE("/actividades/:id", h.Activities.Delete)

    g.GET("/actividades/:id/comentarios", h.Comments.List)
    g.POST("/actividades/:id/comentarios", h.Comments.Create)
    g.DELETE("/comentarios/:id", h.Comments.Delete)

    g.POST("/actividades/:id/documentos", h.Documents.Upload)
    g.GET("/actividades/:id/documentos", h.Documents.List)
    g.GET("/documentos/:id/descarga", h.Documents.Download)
    g.DELETE("/documentos/:id", h.Documents.Delete)

    g.GET("/proyectos", h.Projects.List)
    g.GET("/proyectos/:id", h.Projects.Get)
    g.GET("/asignaciones", h.Projects.Assignments)
    g.POST("/asignaciones/:id/aceptar", h.Projects.Accept)

    g.GET("/estadisticas/actividades/diarias", h.Stats.Daily, opts.cache())
    g.GET("/estadisticas/actividades/proyectos", h.Stats.Projects, opts.cache())
}
