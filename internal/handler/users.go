package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// UserHandler serves the supervision hierarchy.
type UserHandler struct {
    Users *service.UserService
    errs  errorWriter
}

func NewUserHandler(users *service.UserService, log *logger.Logger, dev bool) *UserHandler {
    return &UserHandler{Users: users, errs: newErrorWriter(log, dev)}
}

// Supervised handles GET /usuarios/supervisados.
func (h *UserHandler) Supervised(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    list, err := h.Users.ListSupervised(ctx, caller)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"usuarios": mapSlice(list, toUserView)})
}

// SetSupervisor handles PATCH /usuarios/:id/supervisor with
// {"supervisorId": n} or {"supervisorId": null}.
func (h *UserHandler) SetSupervisor(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    var req struct {
        SupervisorID *uint64 `json:"supervisorId"`
    }
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.AssignSupervisor(ctx, caller, id, req.SupervisorID)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toUserView(*u))
}
