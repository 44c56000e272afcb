package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/minishop/internal/api/middleware"
	"github.com/example/minishop/internal/auth"
)

type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	handlers := cfg.Handlers
	requireAdmin := middleware.RequireAdmin(cfg.JWTService)

	// Auth
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		cfg.AuthHandlers.Login(w, r)
	})

	// Orders
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			handlers.CreateOrder(w, r)
		default:
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/orders/")
		switch {
		case path == "customer" && r.Method == http.MethodGet:
			handlers.GetOrdersByCustomer(w, r)
		case path == "date-range" && r.Method == http.MethodGet:
			handlers.GetOrdersByDateRange(w, r)
		case strings.HasPrefix(path, "status/") && r.Method == http.MethodGet:
			handlers.GetOrdersByStatus(w, r)
		case strings.HasSuffix(path, "/status") && r.Method == http.MethodPatch:
			requireAdmin(http.HandlerFunc(handlers.UpdateOrderStatus)).ServeHTTP(w, r)
		case r.Method == http.MethodDelete:
			requireAdmin(http.HandlerFunc(handlers.DeleteOrder)).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Catalog
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.GetProducts(w, r)
	})

	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if strings.HasPrefix(strings.TrimPrefix(r.URL.Path, "/api/products/"), "category/") {
			handlers.GetProductsByCategory(w, r)
			return
		}
		handlers.GetProduct(w, r)
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.GetCategories(w, r)
	})

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
