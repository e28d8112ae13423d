package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/middleware"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

// errorWriter turns service errors into JSON responses.  When dev is true
// the text of unexpected errors is included in the body.
type errorWriter struct {
    log *logger.Logger
    dev bool
}

func newErrorWriter(log *logger.Logger, dev bool) errorWriter {
    if log == nil {
        log = logger.NewNop()
    }
    return errorWriter{log: log, dev: dev}
}

// statusFor maps an error kind to an HTTP status.  Zero means unexpected.
func statusFor(err error) int {
    switch {
    case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnsupportedFormat):
        return http.StatusBadRequest
    case errors.Is(err, service.ErrUnauthenticated):
        return http.StatusUnauthorized
    case errors.Is(err, service.ErrForbidden):
        return http.StatusForbidden
    case errors.Is(err, service.ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, service.ErrOverlap), errors.Is(err, service.ErrImmutable),
        errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInactiveProject):
        return http.StatusConflict
    }
    return 0
}

// fail writes the response for err.
func (w errorWriter) fail(c echo.Context, err error) error {
    if status := statusFor(err); status != 0 {
        msg := service.PublicMessage(err)
        if msg == "" {
            msg = http.StatusText(status)
        }
        return c.JSON(status, echo.Map{"message": msg})
    }
    if errors.Is(err, context.DeadlineExceeded) {
        w.log.Warn("request timed out", zap.String("path", c.Path()), zap.Error(err))
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"message": "la operación tardó demasiado"})
    }
    w.log.Error("request failed", zap.String("method", c.Request().Method), zap.String("path", c.Path()), zap.Error(err))
    body := echo.Map{"message": "error interno del servidor"}
    if w.dev {
        body["error"] = err.Error()
    }
    return c.JSON(http.StatusInternalServerError, body)
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "no autenticado"})
}

// getUserID extracts the user_id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get(middleware.UserIDKey).(type) {
    case uint64:
        if t != 0 {
            return t, nil
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// callerFrom returns the authenticated caller of the request.
func callerFrom(c echo.Context) (service.Caller, bool) {
    id, err := getUserID(c)
    if err != nil {
        return service.Caller{}, false
    }
    role, _ := c.Get(middleware.RoleKey).(string)
    return service.Caller{ID: id, Role: role}, true
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    return n, err == nil && n != 0
}

// queryID parses an optional numeric query parameter.  The second result
// is false when the value is present but malformed.
func queryID(c echo.Context, name string) (*uint64, bool) {
    raw := strings.TrimSpace(c.QueryParam(name))
    if raw == "" {
        return nil, true
    }
    n, err := strconv.ParseUint(raw, 10, 64)
    if err != nil || n == 0 {
        return nil, false
    }
    return &n, true
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (*time.Time, error) {
    raw := strings.TrimSpace(c.QueryParam(name))
    if raw == "" {
        return nil, nil
    }
    t, err := service.ParseDate(name, raw)
    if err != nil {
        return nil, err
    }
    return &t, nil
}

func queryBool(c echo.Context, name string) bool {
    b, _ := strconv.ParseBool(strings.TrimSpace(c.QueryParam(name)))
    return b
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}
