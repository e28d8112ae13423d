package handler

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/activity-tracker/internal/middleware"
    "github.com/iliyamo/activity-tracker/internal/service"
)

func TestStatusFor(t *testing.T) {
    cases := []struct {
        err  error
        want int
    }{
        {service.Invalid("fecha", "fecha requerida"), http.StatusBadRequest},
        {service.ErrUnsupportedFormat, http.StatusBadRequest},
        {service.ErrUnauthenticated, http.StatusUnauthorized},
        {service.ErrForbidden, http.StatusForbidden},
        {fmt.Errorf("wrapped: %w", service.ErrNotFound), http.StatusNotFound},
        {service.ErrOverlap, http.StatusConflict},
        {service.ErrImmutable, http.StatusConflict},
        {service.ErrConflict, http.StatusConflict},
        {service.ErrInactiveProject, http.StatusConflict},
        {errors.New("boom"), 0},
        {context.DeadlineExceeded, 0},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
    }
}

func recordFail(t *testing.T, dev bool, err error) (*httptest.ResponseRecorder, map[string]any) {
    t.Helper()
    e := echo.New()
    rec := httptest.NewRecorder()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
    require.NoError(t, newErrorWriter(nil, dev).fail(c, err))
    var body map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    return rec, body
}

func TestFail(t *testing.T) {
    rec, body := recordFail(t, false, service.Invalid("horaFin", "hora de fin inválida"))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "hora de fin inválida", body["message"])

    rec, body = recordFail(t, false, service.ErrForbidden)
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Equal(t, "forbidden", body["message"])

    rec, body = recordFail(t, false, fmt.Errorf("load: %w", context.DeadlineExceeded))
    assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
    assert.NotEmpty(t, body["message"])

    rec, body = recordFail(t, false, errors.New("dial tcp: refused"))
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.NotContains(t, body, "error")

    rec, body = recordFail(t, true, errors.New("dial tcp: refused"))
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.Equal(t, "dial tcp: refused", body["error"])
}

func TestCallerFrom(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    _, ok := callerFrom(c)
    assert.False(t, ok)

    c.Set(middleware.UserIDKey, uint64(7))
    c.Set(middleware.RoleKey, "supervisor")
    caller, ok := callerFrom(c)
    require.True(t, ok)
    assert.Equal(t, service.Caller{ID: 7, Role: "supervisor"}, caller)

    c.Set(middleware.UserIDKey, "12")
    caller, ok = callerFrom(c)
    require.True(t, ok)
    assert.EqualValues(t, 12, caller.ID)
}

func TestQueryHelpers(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?usuario=5&proyecto=x&fechaInicio=2025-02-30&fechaFin=2025-03-01&flag=true", nil), httptest.NewRecorder())

    id, ok := queryID(c, "usuario")
    require.True(t, ok)
    assert.EqualValues(t, 5, *id)
    _, ok = queryID(c, "proyecto")
    assert.False(t, ok)
    id, ok = queryID(c, "missing")
    assert.True(t, ok)
    assert.Nil(t, id)

    _, err := queryDate(c, "fechaInicio")
    assert.ErrorIs(t, err, service.ErrValidation)
    d, err := queryDate(c, "fechaFin")
    require.NoError(t, err)
    assert.Equal(t, "2025-03-01", d.Format("2006-01-02"))

    assert.True(t, queryBool(c, "flag"))
    assert.False(t, queryBool(c, "missing"))
}

func TestAttachment(t *testing.T) {
    assert.Equal(t, "attachment; filename=informe.xlsx", attachment("informe.xlsx"))
    assert.Equal(t, `attachment; filename="acta final.pdf"`, attachment("acta final.pdf"))
    assert.Contains(t, attachment("reunión.txt"), "filename*=utf-8''")
}
