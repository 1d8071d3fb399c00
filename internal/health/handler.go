package health

import (
	"context"
	"net/http"
	"time"

	"eventbook/pkg/httputil"
	"eventbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
)

type Handler struct {
	mongo *mongo.Client
	log   *logger.Logger
}

func NewHandler(mongoClient *mongo.Client, log *logger.Logger) *Handler {
	return &Handler{
		mongo: mongoClient,
		log:   log,
	}
}

// Live reports process liveness only.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	_ = httputil.WriteSuccess(w, map[string]string{"status": "ok"})
}

// Ready also pings the database; a failed ping returns 503 so the instance
// is pulled from rotation instead of serving errors.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.mongo.Ping(ctx, nil); err != nil {
		h.log.Error("Readiness check failed", "error", err)
		_ = httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}

	_ = httputil.WriteSuccess(w, map[string]string{"status": "ready"})
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Live)
	router.GET("/ready", h.Ready)
}
