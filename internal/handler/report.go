package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// ReportHandler serves supervisor exports.
type ReportHandler struct {
    Reports *service.ReportService
    errs    errorWriter
}

func NewReportHandler(reports *service.ReportService, log *logger.Logger, dev bool) *ReportHandler {
    return &ReportHandler{Reports: reports, errs: newErrorWriter(log, dev)}
}

// Supervised handles GET /informes/supervisado/:id/excel.  Query
// parameters: proyecto, fechaInicio, fechaFin, formato, agruparPor and
// incluirInactivos.
func (h *ReportHandler) Supervised(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id de supervisado inválido")
    }
    project, ok := queryID(c, "proyecto")
    if !ok {
        return badRequest(c, "proyecto inválido")
    }
    from, err := queryDate(c, "fechaInicio")
    if err != nil {
        return h.errs.fail(c, err)
    }
    to, err := queryDate(c, "fechaFin")
    if err != nil {
        return h.errs.fail(c, err)
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    rep, err := h.Reports.Generate(ctx, service.ReportRequest{
        SupervisedUserID: id,
        SupervisorID:     caller.ID,
        ProjectID:        project,
        DateFrom:         from,
        DateTo:           to,
        Format:           c.QueryParam("formato"),
        GroupBy:          c.QueryParam("agruparPor"),
        IncludeInactive:  queryBool(c, "incluirInactivos"),
        AdminOverride:    caller.IsAdmin(),
        Now:              time.Now(),
    })
    if errors.Is(err, service.ErrInactiveProject) {
        return badRequest(c, service.PublicMessage(err))
    }
    if err != nil {
        return h.errs.fail(c, err)
    }

    c.Response().Header().Set(echo.HeaderContentDisposition, attachment(rep.Filename))
    c.Response().Header().Set("X-Report-Rows", strconv.Itoa(rep.Rows))
    return c.Blob(http.StatusOK, rep.ContentType, rep.Content)
}
