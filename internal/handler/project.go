package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// ProjectHandler serves projects and assignments.
type ProjectHandler struct {
    Projects *service.ProjectService
    errs     errorWriter
}

func NewProjectHandler(projects *service.ProjectService, log *logger.Logger, dev bool) *ProjectHandler {
    return &ProjectHandler{Projects: projects, errs: newErrorWriter(log, dev)}
}

type projectReq struct {
    Name        string `json:"nombre"`
    Description string `json:"descripcion"`
    StartDate   string `json:"fechaInicio"`
    EndDate     string `json:"fechaFin"`
}

func (r projectReq) input() (service.ProjectInput, error) {
    in := service.ProjectInput{Name: r.Name, Description: r.Description}
    if strings.TrimSpace(r.StartDate) != "" {
        d, err := service.ParseDate("fechaInicio", r.StartDate)
        if err != nil {
            return in, err
        }
        in.StartDate = &d
    }
    if strings.TrimSpace(r.EndDate) != "" {
        d, err := service.ParseDate("fechaFin", r.EndDate)
        if err != nil {
            return in, err
        }
        in.EndDate = &d
    }
    return in, nil
}

// List handles GET /proyectos.  incluirInactivos=true also returns
// deactivated projects.
func (h *ProjectHandler) List(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    list, err := h.Projects.List(ctx, caller, queryBool(c, "incluirInactivos"))
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"proyectos": mapSlice(list, toProjectView)})
}

// Get handles GET /proyectos/:id.
func (h *ProjectHandler) Get(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    p, err := h.Projects.Get(ctx, caller, id)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toProjectView(*p))
}

// Create handles POST /proyectos.
func (h *ProjectHandler) Create(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    var req projectReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    in, err := req.input()
    if err != nil {
        return h.errs.fail(c, err)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    p, err := h.Projects.Create(ctx, caller, in)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusCreated, toProjectView(*p))
}

// Update handles PUT /proyectos/:id.
func (h *ProjectHandler) Update(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    var req projectReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    in, err := req.input()
    if err != nil {
        return h.errs.fail(c, err)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    p, err := h.Projects.Update(ctx, caller, id, in)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toProjectView(*p))
}

func (h *ProjectHandler) setActive(c echo.Context, active bool) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    p, err := h.Projects.SetActive(ctx, caller, id, active)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toProjectView(*p))
}

// Deactivate handles PATCH /proyectos/:id/desactivar.
func (h *ProjectHandler) Deactivate(c echo.Context) error { return h.setActive(c, false) }

// Reactivate handles PATCH /proyectos/:id/reactivar.
func (h *ProjectHandler) Reactivate(c echo.Context) error { return h.setActive(c, true) }

// Assign handles POST /proyectos/:id/asignaciones with {"usuarioId": n}.
func (h *ProjectHandler) Assign(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    var req struct {
        UserID uint64 `json:"usuarioId"`
    }
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    a, err := h.Projects.Assign(ctx, caller, id, req.UserID)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusCreated, toAssignmentView(*a))
}

// Assignments handles GET /asignaciones.
func (h *ProjectHandler) Assignments(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    list, err := h.Projects.Assignments(ctx, caller)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"asignaciones": mapSlice(list, toAssignmentView)})
}

// Accept handles POST /asignaciones/:id/aceptar.
func (h *ProjectHandler) Accept(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    a, err := h.Projects.Accept(ctx, caller, id)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toAssignmentView(*a))
}
