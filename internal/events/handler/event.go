package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventbook/internal/events/service"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/httputil"
	"eventbook/pkg/imagestore"
	"eventbook/pkg/logger"
	"eventbook/pkg/middleware"
	"eventbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const multipartMaxMemory = 8 << 20

type EventHandler struct {
	service service.EventService
	images  imagestore.Store
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewEventHandler(svc service.EventService, images imagestore.Store, auth *middleware.Authenticator, log *logger.Logger) *EventHandler {
	return &EventHandler{
		service: svc,
		images:  images,
		auth:    auth,
		log:     log,
	}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Not authorized"))
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid multipart form"))
		return
	}

	event := &model.Event{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Time:        r.FormValue("time"),
		Venue:       r.FormValue("venue"),
		Category:    r.FormValue("category"),
		Location:    r.FormValue("location"),
	}

	if raw := r.FormValue("date"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			h.writeError(w, "Create", apperrors.InvalidInput("date must be an ISO date"))
			return
		}
		event.Date = date
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(w, "Create", apperrors.InvalidInput("price must be a number"))
			return
		}
		event.Price = price
	}
	if raw := r.FormValue("seatLimit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, "Create", apperrors.InvalidInput("seatLimit must be an integer"))
			return
		}
		event.SeatLimit = limit
	}

	image, err := h.storeImage(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	event.Image = image

	created, err := h.service.Create(r.Context(), principal.ID, event)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := model.EventFilter{
		Location: r.URL.Query().Get("location"),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput("price must be a number"))
			return
		}
		filter.MaxPrice = &maxPrice
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput("limit must be an integer"))
			return
		}
		filter.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput("offset must be an integer"))
			return
		}
		filter.Offset = offset
	}

	events, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events, err := h.service.Upcoming(r.Context())
	if err != nil {
		h.writeError(w, "Upcoming", err)
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "Upcoming", "error", err)
	}
}

func (h *EventHandler) FilterOptions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.writeError(w, "FilterOptions", err)
		return
	}

	if err := httputil.WriteSuccess(w, opts); err != nil {
		h.log.Error("failed to write success response", "handler", "FilterOptions", "error", err)
	}
}

func (h *EventHandler) ByAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	events, err := h.service.ByAdmin(r.Context(), ps.ByName("adminId"))
	if err != nil {
		h.writeError(w, "ByAdmin", err)
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "ByAdmin", "error", err)
	}
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid multipart form"))
		return
	}

	update := &model.EventUpdate{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Time:        r.FormValue("time"),
		Venue:       r.FormValue("venue"),
		Category:    r.FormValue("category"),
		Location:    r.FormValue("location"),
	}

	if raw := r.FormValue("date"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			h.writeError(w, "Update", apperrors.InvalidInput("date must be an ISO date"))
			return
		}
		update.Date = &date
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(w, "Update", apperrors.InvalidInput("price must be a number"))
			return
		}
		update.Price = &price
	}
	if raw := r.FormValue("seatLimit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, "Update", apperrors.InvalidInput("seatLimit must be an integer"))
			return
		}
		update.SeatLimit = &limit
	}

	image, err := h.storeImage(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	update.Image = image

	event, err := h.service.Update(r.Context(), ps.ByName("id"), update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"success": true,
		"message": "Event deleted successfully",
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

// storeImage persists an optional "image" form file and returns its public
// path, or "" when the field is absent.
func (h *EventHandler) storeImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", apperrors.InvalidInput("Invalid image upload")
	}
	defer func(file multipart.File) { _ = file.Close() }(file)

	path, err := h.images.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.log.Error("failed to store event image", "filename", header.Filename, "error", err)
		return "", apperrors.Internal("Failed to store image", err)
	}
	return path, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *EventHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

// RegisterRoutes wires the catalog routes. httprouter rejects static path
// segments alongside a wildcard, so /api/events/filters and
// /api/events/upcoming are dispatched inside the :id handle, and
// /api/events/admin/:adminId through the two-segment wildcard below.
func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/events", h.auth.ProtectAdmin(h.Create))
	router.GET("/api/events", h.List)
	router.GET("/api/events/:id", h.dispatchGet)
	router.GET("/api/events/:id/:adminId", h.dispatchAdmin(h.auth.ProtectAdmin(h.ByAdmin)))
	router.PUT("/api/events/:id", h.auth.ProtectAdmin(h.Update))
	router.DELETE("/api/events/:id", h.auth.ProtectAdmin(h.Delete))
}

func (h *EventHandler) dispatchGet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("id") {
	case "filters":
		h.FilterOptions(w, r, ps)
	case "upcoming":
		h.Upcoming(w, r, ps)
	default:
		h.Get(w, r, ps)
	}
}

func (h *EventHandler) dispatchAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("id") != "admin" {
			http.NotFound(w, r)
			return
		}
		next(w, r, ps)
	}
}
