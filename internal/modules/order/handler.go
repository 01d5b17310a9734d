package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/middleware"
)

// Handler exposes order HTTP endpoints.
type Handler struct {
	service Service

	// createThrottle applies the order_create scope on top of the global
	// per-user quota.
	createThrottle func(http.Handler) http.Handler
}

func NewHandler(service Service, createThrottle func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, createThrottle: createThrottle}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.With(h.createThrottle).Post("/orders", h.create)
	r.Get("/orders/{id}", h.get)
	r.Patch("/orders/{id}", h.updateStatus)
	r.Delete("/orders/{id}", h.delete)
	r.Get("/orders/count/{business_id}", h.countInProgress)
	r.Get("/orders/completed-count/{business_id}", h.countCompleted)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	var req CreateRequest
	if err := decodeStrict(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	o, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusCreated, NewResponse(o))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	orders, err := h.service.List(r.Context(), principal)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	// Bare array, no pagination envelope.
	out := make([]Response, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewResponse(o))
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	o, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, NewResponse(o))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	var req UpdateStatusRequest
	if err := decodeStrict(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, NewResponse(o))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		apierror.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) countInProgress(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	count, err := h.service.CountInProgress(r.Context(), principal, chi.URLParam(r, "business_id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"order_count": count})
}

func (h *Handler) countCompleted(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	count, err := h.service.CountCompleted(r.Context(), principal, chi.URLParam(r, "business_id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"completed_order_count": count})
}

// decodeStrict rejects payloads carrying unexpected fields.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierror.Validation("Malformed JSON body or unexpected fields.")
	}
	return nil
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
