// Package api exposes the booking engine over HTTP JSON: the customer
// booking flow, the payment helpers, and the password-gated admin
// surface.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/auth"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/engine"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/payments"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	engine         *engine.Engine
	auth           *auth.Service
	payments       *payments.Generator
	logger         *zerolog.Logger
	limiter        *ipLimiter
	allowedOrigins []string
}

// Config wires a Server.
type Config struct {
	Engine         *engine.Engine
	Auth           *auth.Service
	Payments       *payments.Generator
	Logger         *zerolog.Logger
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// New builds the server and its middleware chain.
func New(cfg Config) *Server {
	return &Server{
		engine:         cfg.Engine,
		auth:           cfg.Auth,
		payments:       cfg.Payments,
		logger:         cfg.Logger,
		limiter:        newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		allowedOrigins: cfg.AllowedOrigins,
	}
}

// Handler returns the fully wired route tree.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.GET("/api/slots", s.handleListSlots)

	router.POST("/api/sessions", s.handleCreateSession)
	router.GET("/api/sessions/:id", s.handleGetSession)
	router.DELETE("/api/sessions/:id", s.handleCancelSession)
	router.PUT("/api/sessions/:id/contact", s.handleUpdateContact)
	router.POST("/api/sessions/:id/slots", s.handleSelectSlot)
	router.DELETE("/api/sessions/:id/slots/:slotID", s.handleDeselectSlot)
	router.POST("/api/sessions/:id/reset", s.handleResetSession)
	router.POST("/api/sessions/:id/submit", s.handleSubmitBooking)

	router.GET("/api/payments/qr", s.handlePaymentQR)

	router.POST("/api/admin/login", s.handleAdminLogin)
	router.GET("/api/admin/bookings", s.requireAdmin(s.handleAdminBookings))
	router.GET("/api/admin/bookings/export", s.requireAdmin(s.handleAdminExport))
	router.PATCH("/api/admin/bookings/:id/status", s.requireAdmin(s.handleAdminUpdateStatus))
	router.DELETE("/api/admin/bookings/:id", s.requireAdmin(s.handleAdminRemoveBooking))
	router.DELETE("/api/admin/bookings/:id/slots/:slotID", s.requireAdmin(s.handleAdminRemoveSlot))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return s.withLogging(s.withRateLimit(corsHandler.Handler(router)))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondEngineError maps the engine's error taxonomy onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrPersistence):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
