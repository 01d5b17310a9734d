package offer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/config"
	"github.com/serviceyard/serviceyard-backend/internal/middleware"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service Service
	pages   config.Pagination
}

func NewHandler(service Service, pages config.Pagination) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/offers", h.list)
	r.Post("/offers", h.create)
	r.Get("/offers/{id}", h.get)
	r.Patch("/offers/{id}", h.update)
	r.Delete("/offers/{id}", h.delete)
	r.Get("/offer-details/{id}", h.getDetail)
}

// pageEnvelope is the list response shape: count plus page links.
type pageEnvelope struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ListFilter{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if v := q.Get("creator_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			apierror.Write(w, apierror.Validation("Invalid creator_id."))
			return
		}
		filter.CreatorID = &id
	}
	if v := q.Get("max_delivery_time"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			apierror.Write(w, apierror.Validation("Invalid max_delivery_time."))
			return
		}
		filter.MaxDeliveryTime = &days
	}
	if v := q.Get("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			apierror.Write(w, apierror.Validation("Invalid min_price."))
			return
		}
		filter.MinPrice = &price
	}

	page, pageSize := h.pageParams(q.Get("page"), q.Get("page_size"))
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	offers, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	results := make([]Response, 0, len(offers))
	for _, o := range offers {
		results = append(results, NewLightResponse(o))
	}

	respond(w, http.StatusOK, pageEnvelope{
		Count:    total,
		Next:     pageLink(r, page+1, pageSize, filter.Offset+len(offers) < total),
		Previous: pageLink(r, page-1, pageSize, page > 1),
		Results:  results,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.Validation("Malformed JSON body."))
		return
	}

	offer, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusCreated, NewWriteResponse(offer))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	offer, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, NewLightResponse(offer))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.Validation("Malformed JSON body."))
		return
	}

	offer, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, NewWriteResponse(offer))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		apierror.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getDetail(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	detail, err := h.service.GetDetail(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	respond(w, http.StatusOK, NewDetailResponse(detail))
}

func (h *Handler) pageParams(pageStr, sizeStr string) (page, pageSize int) {
	page = 1
	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		page = n
	}
	pageSize = h.pages.DefaultPageSize
	if n, err := strconv.Atoi(sizeStr); err == nil && n > 0 {
		pageSize = n
	}
	if pageSize > h.pages.MaxPageSize {
		pageSize = h.pages.MaxPageSize
	}
	return page, pageSize
}

func pageLink(r *http.Request, page, pageSize int, exists bool) *string {
	if !exists {
		return nil
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	link := r.URL.Path + "?" + q.Encode()
	return &link
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
