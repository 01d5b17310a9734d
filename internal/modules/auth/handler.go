package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/modules/profile"
)

// Handler exposes registration and login endpoints.
type Handler struct {
	service Service

	// Scoped throttles; both are applied only to their own route.
	loginThrottle        func(http.Handler) http.Handler
	registrationThrottle func(http.Handler) http.Handler
}

func NewHandler(service Service, loginThrottle, registrationThrottle func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:              service,
		loginThrottle:        loginThrottle,
		registrationThrottle: registrationThrottle,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.registrationThrottle).Post("/registration", h.register)
	r.With(h.loginThrottle).Post("/login", h.login)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req profile.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.Validation("Malformed JSON body."))
		return
	}

	creds, err := h.service.Register(r.Context(), req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusCreated, creds)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.Validation("Malformed JSON body."))
		return
	}

	creds, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, creds)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
