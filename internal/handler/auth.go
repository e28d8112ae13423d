package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/activity-tracker/internal/config"
    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/model"
    "github.com/iliyamo/activity-tracker/internal/repository"
    "github.com/iliyamo/activity-tracker/internal/service"
    "github.com/iliyamo/activity-tracker/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *service.UserService
    Tokens service.TokenStore
    errs   errorWriter
}

func NewAuthHandler(cfg config.Config, users *service.UserService, tokens service.TokenStore, log *logger.Logger) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, errs: newErrorWriter(log, cfg.IsDev())}
}

// ----- DTOs -----

type registerReq struct {
    Email        string  `json:"email"`
    Password     string  `json:"password"`
    FirstName    string  `json:"nombre"`
    LastName     string  `json:"apellido"`
    Role         string  `json:"rol"`
    SupervisorID *uint64 `json:"supervisorId"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type authResp struct {
    User    userView  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// issue signs an access token and stores a fresh refresh token.
func (h *AuthHandler) issue(c echo.Context, u *model.User, status int) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    now := time.Now()
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin, now)
    if err != nil {
        return h.errs.fail(c, err)
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays, now)
    if err != nil {
        return h.errs.fail(c, err)
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(status, authResp{
        User:    toUserView(*u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

// Register creates an account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.Register(ctx, service.Registration{
        Email:        req.Email,
        Password:     req.Password,
        FirstName:    req.FirstName,
        LastName:     req.LastName,
        Role:         req.Role,
        SupervisorID: req.SupervisorID,
    })
    if err != nil {
        return h.errs.fail(c, err)
    }
    return h.issue(c, u, http.StatusCreated)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "cuerpo de la solicitud inválido")
    }
    if strings.TrimSpace(req.Email) == "" || req.Password == "" {
        return badRequest(c, "email y password son requeridos")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return h.issue(c, u, http.StatusOK)
}

// Refresh validates the refresh token, revokes it and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return badRequest(c, "refresh_token requerido")
    }
    oldHash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := withTimeout(c)
    defer cancel()

    now := time.Now()
    userID, err := h.Tokens.ValidateRefresh(ctx, oldHash, now)
    if err != nil {
        if errors.Is(err, repository.ErrInvalidRefresh) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"message": "refresh token inválido"})
        }
        return h.errs.fail(c, err)
    }
    u, err := h.Users.Get(ctx, userID)
    if err != nil {
        if errors.Is(err, service.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"message": "refresh token inválido"})
        }
        return h.errs.fail(c, err)
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin, now)
    if err != nil {
        return h.errs.fail(c, err)
    }
    next, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays, now)
    if err != nil {
        return h.errs.fail(c, err)
    }
    if err := h.Tokens.Rotate(ctx, u.ID, oldHash, utils.HashRefreshRaw(next.Raw), next.Exp); err != nil {
        if errors.Is(err, repository.ErrInvalidRefresh) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"message": "refresh token inválido"})
        }
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, authResp{
        User:    toUserView(*u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: next.Raw, Expires: next.Exp},
    })
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the bearer when only an access token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)

    var uid uint64
    if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
        if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
            uid = claims.UserID
        }
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    switch {
    case raw != "":
        hash := utils.HashRefreshRaw(raw)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash, time.Now()); err != nil {
            if errors.Is(err, repository.ErrInvalidRefresh) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "refresh token inválido"})
            }
            return h.errs.fail(c, err)
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return h.errs.fail(c, err)
        }
    case uid != 0:
        if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
            return h.errs.fail(c, err)
        }
    default:
        return badRequest(c, "envíe el header Authorization o refresh_token")
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
    caller, ok := callerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.Get(ctx, caller.ID)
    if err != nil {
        return h.errs.fail(c, err)
    }
    return c.JSON(http.StatusOK, toUserView(*u))
}
