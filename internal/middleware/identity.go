package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// callerKey returns the authenticated user id as a string for cache and
// rate-limit keys, or "anon" before JWTAuth has run.
func callerKey(c echo.Context) string {
    if id, ok := c.Get(UserIDKey).(uint64); ok && id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
