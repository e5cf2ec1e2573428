package rest

import (
	"net/http"

	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Product  *ProductHandler
	Category *CategoryHandler
	User     *UserHandler
	Auth     *AuthHandler
	Health   *HealthHandler
}

// NewRouter mounts all REST routes. Reads on the catalog are public;
// catalog and user mutations require ROLE_ADMIN; /users/me requires any
// authenticated identity.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	admin := middleware.RequireAuthority(domain.RoleAdmin)

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.HandleFunc("POST /auth/recover-token", h.Auth.RecoverToken)
	mux.HandleFunc("PUT /auth/new-password", h.Auth.NewPassword)

	mux.HandleFunc("GET /products", h.Product.Search)
	mux.HandleFunc("GET /products/{id}", h.Product.Get)
	mux.Handle("POST /products", admin(http.HandlerFunc(h.Product.Create)))
	mux.Handle("PUT /products/{id}", admin(http.HandlerFunc(h.Product.Update)))
	mux.Handle("DELETE /products/{id}", admin(http.HandlerFunc(h.Product.Delete)))

	mux.HandleFunc("GET /categories", h.Category.List)
	mux.HandleFunc("GET /categories/{id}", h.Category.Get)
	mux.Handle("POST /categories", admin(http.HandlerFunc(h.Category.Create)))
	mux.Handle("PUT /categories/{id}", admin(http.HandlerFunc(h.Category.Update)))
	mux.Handle("DELETE /categories/{id}", admin(http.HandlerFunc(h.Category.Delete)))

	mux.Handle("GET /roles", admin(http.HandlerFunc(h.User.ListRoles)))

	mux.Handle("GET /users", admin(http.HandlerFunc(h.User.List)))
	mux.Handle("GET /users/me", middleware.RequireAuth(http.HandlerFunc(h.User.GetMe)))
	mux.Handle("GET /users/{id}", admin(http.HandlerFunc(h.User.Get)))
	mux.Handle("POST /users", admin(http.HandlerFunc(h.User.Create)))
	mux.Handle("PUT /users/{id}", admin(http.HandlerFunc(h.User.Update)))
	mux.Handle("DELETE /users/{id}", admin(http.HandlerFunc(h.User.Delete)))

	return mux
}
