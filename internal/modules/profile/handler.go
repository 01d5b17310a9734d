package profile

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/middleware"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

// Handler exposes profile HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profile/{id}", h.getProfile)
	r.Patch("/profile/{id}", h.updateProfile)
	r.Get("/profiles/business", h.listBusiness)
	r.Get("/profiles/customer", h.listCustomer)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	profile, err := h.service.GetProfile(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, NewResponse(profile, baseURL(r)))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	var req UpdateRequest
	if err := decodeStrict(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, NewResponse(profile, baseURL(r)))
}

func (h *Handler) listBusiness(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, policy.RoleBusiness)
}

func (h *Handler) listCustomer(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, policy.RoleCustomer)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, role policy.Role) {
	principal := middleware.PrincipalFrom(r.Context())
	profiles, err := h.service.ListByType(r.Context(), principal, role)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	// Bare array, no pagination envelope.
	out := make([]Response, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewResponse(p, baseURL(r)))
	}
	respond(w, http.StatusOK, out)
}

func baseURL(r *http.Request) string {
	if r.Host == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
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
