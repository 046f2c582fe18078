package http

import (
	"net/http"

	"catalog-system/internal/delivery/http/handler"
	"catalog-system/internal/delivery/http/middleware"
	"catalog-system/internal/domain/policy"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	authHandler       *handler.AuthHandler
	productHandler    *handler.ProductHandler
	userHandler       *handler.UserHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
	metricsMiddleware *middleware.MetricsMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	userHandler *handler.UserHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		authHandler:       authHandler,
		productHandler:    productHandler,
		userHandler:       userHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
		loggingMiddleware: loggingMiddleware,
		metricsMiddleware: metricsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Logging wraps everything so panics anywhere below become one 500.
	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(r.metricsMiddleware.Handle)

	// Health check and metrics
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.metricsMiddleware.Handler()).Methods(http.MethodGet)

	// Auth routes (public)
	auth := r.router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Every resource route identifies the caller; anonymous callers pass
	// through and are judged by the policy guard.
	api := r.router.NewRoute().Subrouter()
	api.Use(r.authMiddleware.Authenticate)

	api.Handle("/auth/logout", middleware.RequireAuthenticated(http.HandlerFunc(r.authHandler.Logout))).Methods(http.MethodPost)

	// Products
	api.Handle("/products/", middleware.Guard(policy.ProductList, r.productHandler.GetAll)).Methods(http.MethodGet)
	api.Handle("/products/create", middleware.Guard(policy.ProductCreate, r.productHandler.Create)).Methods(http.MethodPost)
	api.Handle("/products/update/{sku}", middleware.Guard(policy.ProductUpdate, r.productHandler.Update)).Methods(http.MethodPut)
	api.Handle("/products/delete/{sku}", middleware.Guard(policy.ProductDelete, r.productHandler.Delete)).Methods(http.MethodDelete)
	api.Handle("/products/{sku}", middleware.Guard(policy.ProductGet, r.productHandler.GetBySKU)).Methods(http.MethodGet)

	// Users
	api.Handle("/users/", middleware.Guard(policy.UserList, r.userHandler.GetAll)).Methods(http.MethodGet)
	api.Handle("/users/create", middleware.Guard(policy.UserCreate, r.userHandler.Create)).Methods(http.MethodPost)
	api.Handle("/users/update/{id}", middleware.Guard(policy.UserUpdate, r.userHandler.Update)).Methods(http.MethodPut)
	api.Handle("/users/delete/{id}", middleware.Guard(policy.UserDelete, r.userHandler.Delete)).Methods(http.MethodDelete)
	api.Handle("/users/{id}", middleware.Guard(policy.UserGet, r.userHandler.GetByID)).Methods(http.MethodGet)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
