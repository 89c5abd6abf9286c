package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/ridehubhq/ridehub/internal/app/store/users"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
	"github.com/ridehubhq/ridehub/internal/app/system/authutil"
	"github.com/ridehubhq/ridehub/internal/app/system/httpjson"
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves token-based sign-in for members and admins.
type Handler struct {
	Users  *userstore.Store
	Tokens *auth.Manager
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, tokens *auth.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Tokens: tokens,
		Log:    logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// HandleMemberLogin handles POST /auth/login.
//
// The caller identifies themselves by email or phone plus password.
// Success sets the token cookie and also returns the token in the body
// for SPA clients that prefer the Authorization header.
func (h *Handler) HandleMemberLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid request body"))
		return
	}
	h.login(w, r, req, false)
}

// HandleAdminLogin handles POST /auth/admin/login. Identical to member
// login except the account must have the admin role.
func (h *Handler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid request body"))
		return
	}
	h.login(w, r, req, true)
}

// HandleLogout handles POST /auth/logout by clearing the token cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Tokens.ClearCookie(w)
	httpjson.OK(w, http.StatusOK, "logged out", nil)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, req loginRequest, adminOnly bool) {
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		httpjson.Error(w, h.Log, apperr.Validation("email or phone is required"))
		return
	}
	if req.Password == "" {
		httpjson.Error(w, h.Log, apperr.Validation("password is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		user *models.User
		err  error
	)
	if adminOnly {
		user, err = h.Users.GetAdminByEmail(ctx, req.Email)
	} else {
		user, err = h.Users.FindByEmailOrPhone(ctx, req.Email, req.Phone)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same answer as a bad password; no account enumeration.
			httpjson.Error(w, h.Log, apperr.Auth("invalid credentials"))
			return
		}
		h.Log.Error("login: user lookup failed", zap.Error(err))
		httpjson.Error(w, h.Log, err)
		return
	}

	if !authutil.CheckPassword(req.Password, user.PasswordHash) {
		httpjson.Error(w, h.Log, apperr.Auth("invalid credentials"))
		return
	}

	token, err := h.Tokens.Mint(auth.TokenUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
	})
	if err != nil {
		h.Log.Error("login: token mint failed", zap.Error(err))
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Tokens.SetCookie(w, token)
	httpjson.OK(w, http.StatusOK, "login successful", loginResponse{Token: token, User: user})
}
