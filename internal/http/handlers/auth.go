package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prodsmart/backend/internal/config"
	"github.com/prodsmart/backend/internal/domain/user"
	"github.com/prodsmart/backend/internal/http/middlewares"
	"github.com/prodsmart/backend/internal/identity"
	"github.com/prodsmart/backend/internal/security"
	"github.com/prodsmart/backend/internal/session"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
}

type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	UserID(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

type AuthHandler struct {
	users    UserStore
	sessions Sessions
	cfg      config.Config
}

func NewAuthHandler(users UserStore, sessions Sessions, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
	}
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindLenient(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Email, hash, req.Name)

	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			RespondConflict(ctx, "Email already exists")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.sessions.Create(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindLenient(ctx, &req) {
		return
	}

	// short timeout for the lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			// unknown email and bad password are deliberately distinct:
			// the login page routes each case differently
			RespondNotFound(ctx, "USER_NOT_FOUND")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "INVALID_PASSWORD")
		return
	}

	token, err := h.sessions.Create(cctx, foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, foundUser)
}

// Logout is idempotent: no cookie, an unknown token and a live session all
// end in the same place.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := ctx.Cookie(middlewares.SessionCookie)

	if err == nil && token != "" {
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		_ = h.sessions.Destroy(cctx, token)
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Session reports whether the caller holds a valid session. Always 200; the
// body carries the answer.
func (h *AuthHandler) Session(ctx *gin.Context) {
	token, err := ctx.Cookie(middlewares.SessionCookie)

	if err != nil || token == "" {
		ctx.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	userID, err := h.sessions.UserID(cctx, token)

	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	// re-fetch so a deleted or changed user is reflected
	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          u,
	})
}

// Cookie helpers

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookie,
		token,
		int(h.cfg.SessionTTL.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookie,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}

var _ Sessions = (session.Store)(nil)
