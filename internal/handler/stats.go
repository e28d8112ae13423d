package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// defaultStatsDays is the window of daily statistics when no range is given.
const defaultStatsDays = 7

// StatsHandler serves /estadisticas.
type StatsHandler struct {
    Stats *service.StatsService
    errs  errorWriter
}

func NewStatsHandler(stats *service.StatsService, log *logger.Logger, dev bool) *StatsHandler {
    return &StatsHandler{Stats: stats, errs: newErrorWriter(log, dev)}
}

// target resolves the optional usuarioId query parameter.
func (h *StatsHandler) target(c echo.Context, caller service.Caller) (uint64, error) {
    id, ok := queryID(c, "usuarioId")
    if !ok {
        return 0, service.Invalid("usuarioId", "usuarioId inválido")
    }
    var want uint64
    if id != nil {
        want = *id
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    return h.Stats.ResolveTarget(ctx, caller, want)
}

// Daily handles GET /estadisticas/actividades/diarias?fechaInicio=&fechaFin=.
// Missing bounds default to the last seven days ending today.
func (h *StatsHandler) Daily(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    from, err := queryDate(c, "fechaInicio")
    if err != nil {
        return h.errs.fail(c, err)
    }
    to, err := queryDate(c, "fechaFin")
    if err != nil {
        return h.errs.fail(c, err)
    }
    if to == nil {
        today := time.Now().UTC().Truncate(24 * time.Hour)
        to = &today
    }
    if from == nil {
        start := to.AddDate(0, 0, -(defaultStatsDays - 1))
        from = &start
    }
    userID, err := h.target(c, caller)
    if err != nil {
        return h.errs.fail(c, err)
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    out, err := h.Stats.DailyCounts(ctx, userID, *from, *to)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"estadisticas": out})
}

// Projects handles GET /estadisticas/actividades/proyectos.
func (h *StatsHandler) Projects(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    userID, err := h.target(c, caller)
    if err != nil {
        return h.errs.fail(c, err)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    out, err := h.Stats.ProjectCounts(ctx, userID)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"estadisticas": out})
}

// User handles GET /estadisticas/usuarios/:id.
func (h *StatsHandler) User(c echo.Context) error {
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

    sum, err := h.Stats.UserSummary(ctx, caller, id, time.Now())
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, sum)
}
