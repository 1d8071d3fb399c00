package handler

import (
	"encoding/json"
	"net/http"

	"eventbook/internal/auth/service"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/httputil"
	"eventbook/pkg/logger"
	"eventbook/pkg/middleware"
	"eventbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service service.AuthService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewAuthHandler(svc service.AuthService, auth *middleware.Authenticator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		auth:    auth,
		log:     log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Register", apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "error", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Login", apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "error", err)
	}
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, "Profile", apperrors.Unauthorized("Not authorized"))
		return
	}

	user, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		h.writeError(w, "Profile", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"success": true,
		"user":    user.Public(),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Profile", "error", err)
	}
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, "UpdateProfile", apperrors.Unauthorized("Not authorized"))
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateProfile", apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.service.UpdateProfile(r.Context(), principal.ID, &req)
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "error", err)
	}
}

// AdminProbe lets the frontend confirm the caller still holds the admin role.
func (h *AuthHandler) AdminProbe(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, map[string]any{
		"success": true,
		"message": "Admin route active",
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "AdminProbe", "error", err)
	}
}

// VerifyToken returns the live account behind a valid token, mirroring the
// profile payload.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.Profile(w, r, ps)
}

func (h *AuthHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/auth/verify-token", h.auth.Protect(h.VerifyToken))
	router.GET("/api/auth/profile", h.auth.Protect(h.Profile))
	router.PUT("/api/auth/profile", h.auth.Protect(h.UpdateProfile))
	router.GET("/api/auth/admin", h.auth.ProtectAdmin(h.AdminProbe))
}
