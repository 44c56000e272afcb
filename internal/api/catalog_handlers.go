package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/minishop/internal/infrastructure/store"
)

// Catalog handlers back the storefront's category browsing and product
// listing views.

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		respondError(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/products/")
	p, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		respondError(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := extractPathParam(r.URL.Path, "/api/products/category/")
	if strings.TrimSpace(categoryID) == "" {
		respondError(w, "category id is required", http.StatusBadRequest)
		return
	}

	products, err := h.catalog.ProductsByCategory(r.Context(), categoryID)
	if err != nil {
		respondError(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondError(w, "failed to list categories", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
