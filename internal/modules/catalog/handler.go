package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service   Service
	adminOnly func(http.Handler) http.Handler
}

func NewHandler(service Service, adminOnly func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, adminOnly: adminOnly}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/productos", h.listProducts)
		r.Post("/productos/buscar", h.searchProducts)
		r.Get("/productos/{slug}", h.getProduct)
		r.With(h.adminOnly).Delete("/cache", h.clearCache)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	req := parseFilterQuery(r.URL.Query())
	products, err := h.service.ListProducts(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	respond(w, http.StatusOK, products)
}

// searchProducts accepts the full FilterRequest shape as JSON, for filter
// combinations the query string cannot express (ranges, nested objects).
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	products, err := h.service.ListProducts(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.service.GetProduct(r.Context(), slug)
	if err != nil {
		if err == ErrNotFound {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

// parseFilterQuery maps query parameters onto a FilterRequest. Comma-split
// values become lists, "true"/"false" become flags, numbers stay numeric.
func parseFilterQuery(query map[string][]string) FilterRequest {
	req := FilterRequest{Filtros: make(map[string]FilterValue)}
	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		switch key {
		case "categoria":
			req.Categoria = splitValues(values)
		case "busqueda", "q":
			req.Busqueda = values[0]
		default:
			req.Filtros[key] = parseFilterValue(values)
		}
	}
	return req
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseFilterValue(values []string) FilterValue {
	parts := splitValues(values)
	if len(parts) == 1 {
		switch parts[0] {
		case "true":
			return BoolFilter(true)
		case "false":
			return BoolFilter(false)
		}
		if n, err := strconv.ParseFloat(parts[0], 64); err == nil {
			return NumberFilter(n)
		}
	}
	return ListFilter(parts...)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
