package review

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/middleware"
)

// Handler exposes review HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/reviews", h.list)
	r.Post("/reviews", h.create)
	r.Get("/reviews/{id}", h.get)
	r.Patch("/reviews/{id}", h.update)
	r.Delete("/reviews/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Ordering: q.Get("ordering")}

	if v := q.Get("business_user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			apierror.Write(w, apierror.Validation("Invalid business_user_id."))
			return
		}
		filter.BusinessProfileID = &id
	}
	if v := q.Get("reviewer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			apierror.Write(w, apierror.Validation("Invalid reviewer_id."))
			return
		}
		filter.ReviewerProfileID = &id
	}

	reviews, err := h.service.List(r.Context(), filter)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	if reviews == nil {
		reviews = []*Review{}
	}
	respond(w, http.StatusOK, reviews)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.Validation("Malformed JSON body."))
		return
	}

	rev, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusCreated, rev)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rev, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, rev)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.Validation("Malformed JSON body."))
		return
	}

	rev, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, rev)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		apierror.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
