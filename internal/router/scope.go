package router

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// scope registers routes that share a middleware chain.  Unlike a prefixed
// echo.Group with middleware it does not claim unmatched paths, so unknown
// URLs still get 404 instead of 401.
type scope struct {
    e  *echo.Echo
    mw []echo.MiddlewareFunc
}

func newScope(e *echo.Echo, mw ...echo.MiddlewareFunc) scope {
    return scope{e: e, mw: mw}
}

func (s scope) add(method, path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
    chain := make([]echo.MiddlewareFunc, 0, len(s.mw)+len(extra))
    chain = append(chain, s.mw...)
    chain = append(chain, extra...)
    s.e.Add(method, path, h, chain...)
}

func (s scope) GET(path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
    s.add(http.MethodGet, path, h, extra...)
}

func (s scope) POST(path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
    s.add(http.MethodPost, path, h, extra...)
}

func (s scope) PUT(path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
    s.add(http.MethodPut, path, h, extra...)
}

func (s scope) PATCH(path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
    s.add(http.MethodPatch, path, h, extra...)
}

func (s scope) DELETE(path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
    s.add(http.MethodDelete, path, h, extra...)
}
