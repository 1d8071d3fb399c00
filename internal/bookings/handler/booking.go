package handler

import (
	"encoding/json"
	"net/http"

	"eventbook/internal/bookings/service"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/httputil"
	"eventbook/pkg/logger"
	"eventbook/pkg/middleware"
	"eventbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(svc service.BookingService, auth *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: svc,
		auth:    auth,
		log:     log,
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, "Book", apperrors.Unauthorized("Not authorized"))
		return
	}

	var req model.BookSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Book", apperrors.InvalidInput("Invalid request body"))
		return
	}

	confirmation, err := h.service.AdmitBooking(r.Context(), principal, ps.ByName("eventId"), req.Seats)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, confirmation); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "error", err)
	}
}

func (h *BookingHandler) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, "History", apperrors.Unauthorized("Not authorized"))
		return
	}

	items, err := h.service.History(r.Context(), principal.ID)
	if err != nil {
		h.writeError(w, "History", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "History", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings/:eventId", h.auth.Protect(h.Book))
	router.GET("/api/bookings/history", h.auth.Protect(h.History))
}
