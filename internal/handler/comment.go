package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// CommentHandler serves activity comments.
type CommentHandler struct {
    Comments *service.CommentService
    errs     errorWriter
}

func NewCommentHandler(comments *service.CommentService, log *logger.Logger, dev bool) *CommentHandler {
    return &CommentHandler{Comments: comments, errs: newErrorWriter(log, dev)}
}

// List handles GET /actividades/:id/comentarios.
func (h *CommentHandler) List(c echo.Context) error {
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

    threads, err := h.Comments.List(ctx, caller, id)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"comentarios": mapSlice(threads, toThreadView)})
}

// Create handles POST /actividades/:id/comentarios.
func (h *CommentHandler) Create(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    var req struct {
        Content  string  `json:"contenido"`
        ParentID *uint64 `json:"comentarioPadreId"`
    }
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    cm, err := h.Comments.Create(ctx, caller, id, req.Content, req.ParentID, time.Now())
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusCreated, toCommentView(*cm))
}

// Delete handles DELETE /comentarios/:id.
func (h *CommentHandler) Delete(c echo.Context) error {
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

    if err := h.Comments.Delete(ctx, caller, id); err != nil {
        return h.errs.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
