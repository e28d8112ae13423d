package handler

import (
    "mime"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// DocumentHandler serves files attached to activities.
type DocumentHandler struct {
    Documents *service.DocumentService
    errs      errorWriter
}

func NewDocumentHandler(documents *service.DocumentService, log *logger.Logger, dev bool) *DocumentHandler {
    return &DocumentHandler{Documents: documents, errs: newErrorWriter(log, dev)}
}

// attachment builds a Content-Disposition value for name.
func attachment(name string) string {
    if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
        return v
    }
    return "attachment"
}

// Upload handles POST /actividades/:id/documentos (multipart field "archivo").
func (h *DocumentHandler) Upload(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badRequest(c, "id inválido")
    }
    fh, err := c.FormFile("archivo")
    if err != nil {
        return badRequest(c, "archivo requerido")
    }
    f, err := fh.Open()
    if err != nil {
        return badRequest(c, "no se pudo leer el archivo")
    }
    defer f.Close()

    ctx, cancel := withTimeout(c)
    defer cancel()

    doc, err := h.Documents.Upload(ctx, caller, id, service.Upload{
        FileName:    fh.Filename,
        ContentType: fh.Header.Get(echo.HeaderContentType),
        Body:        f,
    })
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusCreated, toDocumentView(*doc))
}

// List handles GET /actividades/:id/documentos.
func (h *DocumentHandler) List(c echo.Context) error {
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

    docs, err := h.Documents.List(ctx, caller, id)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"documentos": mapSlice(docs, toDocumentView)})
}

// Download handles GET /documentos/:id/descarga.
func (h *DocumentHandler) Download(c echo.Context) error {
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

    doc, rc, err := h.Documents.Open(ctx, caller, id)
    if err != nil {
        return h.errs.fail(c, err)
    }
    defer rc.Close()

    c.Response().Header().Set(echo.HeaderContentDisposition, attachment(doc.FileName))
    if doc.SizeBytes > 0 {
        c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(doc.SizeBytes, 10))
    }
    return c.Stream(http.StatusOK, doc.ContentType, rc)
}

// Delete handles DELETE /documentos/:id.
func (h *DocumentHandler) Delete(c echo.Context) error {
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

    if err := h.Documents.Delete(ctx, caller, id); err != nil {
        return h.errs.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
