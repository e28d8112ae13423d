package handler

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/model"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// ActivityHandler serves /actividades.
type ActivityHandler struct {
    Activities *service.ActivityService
    errs       errorWriter
}

func NewActivityHandler(activities *service.ActivityService, log *logger.Logger, dev bool) *ActivityHandler {
    return &ActivityHandler{Activities: activities, errs: newErrorWriter(log, dev)}
}

type activityReq struct {
    ProjectID   *uint64 `json:"proyectoId"`
    Date        string  `json:"fecha"`
    StartTime   string  `json:"horaInicio"`
    EndTime     string  `json:"horaFin"`
    Description string  `json:"descripcion"`
    Type        string  `json:"tipo"`
}

func (r activityReq) input() (service.ActivityInput, error) {
    if strings.TrimSpace(r.Date) == "" {
        return service.ActivityInput{}, service.Invalid("fecha", "fecha requerida")
    }
    d, err := service.ParseDate("fecha", r.Date)
    if err != nil {
        return service.ActivityInput{}, err
    }
    return service.ActivityInput{
        ProjectID:   r.ProjectID,
        Date:        d,
        StartTime:   r.StartTime,
        EndTime:     r.EndTime,
        Description: r.Description,
        Type:        r.Type,
    }, nil
}

// Create handles POST /actividades.
func (h *ActivityHandler) Create(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    var req activityReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    in, err := req.input()
    if err != nil {
        return h.errs.fail(c, err)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    a, err := h.Activities.Create(ctx, caller, in)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusCreated, toActivityView(*a))
}

// List handles GET /actividades with optional filters fechaInicio,
// fechaFin, estado, proyecto, usuario, page and page_size.
func (h *ActivityHandler) List(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    var q service.ActivityQuery
    var err error
    if q.From, err = queryDate(c, "fechaInicio"); err != nil {
        return h.errs.fail(c, err)
    }
    if q.To, err = queryDate(c, "fechaFin"); err != nil {
        return h.errs.fail(c, err)
    }
    if raw := strings.TrimSpace(c.QueryParam("estado")); raw != "" {
        st, ok := model.ParseStatus(raw)
        if !ok {
            return badRequest(c, "estado inválido")
        }
        q.Status = &st
    }
    if q.ProjectID, ok = queryID(c, "proyecto"); !ok {
        return badRequest(c, "proyecto inválido")
    }
    user, ok := queryID(c, "usuario")
    if !ok {
        return badRequest(c, "usuario inválido")
    }
    if user != nil {
        q.UserID = *user
    }
    if raw := c.QueryParam("page"); raw != "" {
        if q.Page, err = strconv.Atoi(raw); err != nil {
            return badRequest(c, "page inválido")
        }
    }
    if raw := c.QueryParam("page_size"); raw != "" {
        if q.PageSize, err = strconv.Atoi(raw); err != nil {
            return badRequest(c, "page_size inválido")
        }
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    page, err := h.Activities.List(ctx, caller, q)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "actividades": mapSlice(page.Items, toActivityView),
        "total":       page.Total,
        "page":        page.Page,
        "page_size":   page.PageSize,
    })
}

// Get handles GET /actividades/:id.
func (h *ActivityHandler) Get(c echo.Context) error {
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

    a, err := h.Activities.Get(ctx, caller, id)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toActivityView(*a))
}

// Update handles PUT /actividades/:id.
func (h *ActivityHandler) Update(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    var req activityReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    in, err := req.input()
    if err != nil {
        return h.errs.fail(c, err)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    a, err := h.Activities.Update(ctx, caller, id, in)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toActivityView(*a))
}

// Delete handles DELETE /actividades/:id.
func (h *ActivityHandler) Delete(c echo.Context) error {
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

    if err := h.Activities.Delete(ctx, caller, id); err != nil {
        return h.errs.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Submit handles POST /actividades/enviar with body {"ids": [...]}.
func (h *ActivityHandler) Submit(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    var req struct {
        IDs []uint64 `json:"ids"`
    }
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    changed, err := h.Activities.Submit(ctx, caller, req.IDs, time.Now())
    if err != nil {
        return h.errs.fail(c, err)
    }
    if changed == nil {
        changed = []uint64{}
    }
    return c.JSON(http.StatusOK, echo.Map{"enviadas": changed, "total": len(changed)})
}
