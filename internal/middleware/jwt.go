package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/utils"
)

// Context keys written by JWTAuth.
const (
    UserIDKey = "user_id"
    RoleKey   = "role"
)

// JWTAuth validates the Bearer access token and stores the caller's id
// (uint64) and role (string) in the echo context under UserIDKey and
// RoleKey.  Requests without a valid token get 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token de acceso requerido"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token inválido o expirado"})
            }

            c.Set(UserIDKey, claims.UserID)
            c.Set(RoleKey, claims.Role)
            return next(c)
        }
    }
}
