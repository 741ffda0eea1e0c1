// Package web serves the planner and the shopping list as a JSON API.
package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"planifia/internal/app"
	"planifia/internal/session"
)

// Handler holds the HTTP front-end dependencies.
type Handler struct {
	app     *app.App
	tokens  *session.Tokens
	logger  *zap.Logger
	dataDir string
	webhook http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithDataDir sets the directory whose size /health reports.
func WithDataDir(dir string) Option {
	return func(h *Handler) {
		h.dataDir = dir
	}
}

// WithTelegramWebhook mounts the Telegram update handler.
func WithTelegramWebhook(webhook http.Handler) Option {
	return func(h *Handler) {
		h.webhook = webhook
	}
}

// NewHandler creates the HTTP front-end.
func NewHandler(a *app.App, tokens *session.Tokens, opts ...Option) *Handler {
	h := &Handler{
		app:     a,
		tokens:  tokens,
		logger:  zap.NewNop(),
		dataDir: "data",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Router registers every route.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet).Name("HealthCheck")
	r.HandleFunc("/api/session", h.signIn).Methods(http.MethodPost).Name("SignIn")
	if h.webhook != nil {
		r.Handle("/telegram/webhook", h.webhook).Methods(http.MethodPost).Name("TelegramWebhook")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.requireSession)

	api.HandleFunc("/session", h.getSession).Methods(http.MethodGet).Name("GetSession")
	api.HandleFunc("/session", h.signOut).Methods(http.MethodDelete).Name("SignOut")

	api.HandleFunc("/meals", h.weekPlan).Methods(http.MethodGet).Name("WeekPlan")
	api.HandleFunc("/meals", h.saveMeal).Methods(http.MethodPost).Name("SaveMeal")
	api.HandleFunc("/meals/eligibility", h.eligibility).Methods(http.MethodGet).Name("MealEligibility")
	api.HandleFunc("/meals/{id}", h.deleteMeal).Methods(http.MethodDelete).Name("DeleteMeal")

	api.HandleFunc("/shopping", h.shoppingList).Methods(http.MethodGet).Name("ShoppingList")
	api.HandleFunc("/shopping/items", h.addItem).Methods(http.MethodPost).Name("AddShoppingItem")
	api.HandleFunc("/shopping/groups/{name}/toggle", h.toggleGroup).Methods(http.MethodPost).Name("ToggleShoppingGroup")
	api.HandleFunc("/shopping/groups/{name}", h.deleteGroup).Methods(http.MethodDelete).Name("DeleteShoppingGroup")

	return r
}
