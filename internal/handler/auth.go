package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
	"github.com/GoormOnlyOne/onlyone-server/internal/config"
	"github.com/GoormOnlyOne/onlyone-server/internal/repository"
	"github.com/GoormOnlyOne/onlyone-server/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Nickname string `json:"nickname" validate:"required,min=2,max=20"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates a user and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, strings.TrimSpace(req.Nickname), h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return respondError(c, apperr.New(apperr.KindInvalidState, "EMAIL_EXISTS", "email already exists"))
		}
		return respondError(c, err)
	}

	resp, err := h.issueTokens(c, uid, strings.ToLower(strings.TrimSpace(req.Email)), req.Nickname)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == sql.ErrNoRows || (err == nil && !utils.VerifyPassword(u.PasswordHash, req.Password)) {
		return respondError(c, apperr.New(apperr.KindPermissionDenied, "INVALID_CREDENTIALS", "invalid credentials"))
	}
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.issueTokens(c, u.ID, u.Email, u.Nickname)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: validates by hash, revokes the old one
// and issues a fresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqContext(c)
	defer cancel()

	uid, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return respondError(c, apperr.New(apperr.KindPermissionDenied, "INVALID_REFRESH", "invalid refresh token"))
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.issueTokens(c, u.ID, u.Email, u.Nickname)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes every refresh token of the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Tokens.RevokeAllForUser(ctx, userID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Nickname: u.Nickname})
}

func (h *AuthHandler) issueTokens(c echo.Context, uid uint64, email, nickname string) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: uid, Email: email, Nickname: nickname},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw goes back to the client once
	}, nil
}
