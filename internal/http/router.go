package httpapi

import (
	"net/http"

	"table-order-kiosk/internal/config"
	"table-order-kiosk/internal/http/handlers"
	"table-order-kiosk/internal/middleware"
	"table-order-kiosk/internal/services"
	"table-order-kiosk/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(diner *services.Diner, logger *zap.Logger, cfg config.Config, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Request-Id",
			},
			ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}
		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}
		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{Diner: diner, Logger: logger, Config: cfg}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.SessionGet)
		r.Post("/session/scan", h.SessionScan)
		r.Post("/session", h.SessionStart)
		r.Delete("/session", h.SessionEnd)

		r.Post("/auth/login", h.AuthLogin)
		r.Post("/auth/logout", h.AuthLogout)
		r.Get("/auth/me", h.AuthMe)

		r.Get("/language", h.LanguageGet)
		r.Put("/language", h.LanguageSet)

		r.Get("/notes", h.NotesList)
		r.Post("/notes", h.NotesCreate)
		r.Get("/notes/export", h.NotesExport)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionGuard(diner))

			r.Get("/menu/categories", h.MenuCategories)
			r.Get("/menu/categories/{id}/items", h.MenuCategoryItems)
			r.Get("/menu/items", h.MenuItems)
			r.Get("/menu/items/{id}", h.MenuItem)

			r.Get("/cart", h.CartGet)
			r.Post("/cart/items", h.CartAddItem)
			r.Patch("/cart/items/{itemId}", h.CartUpdateItem)
			r.Delete("/cart/items/{itemId}", h.CartRemoveItem)
			r.Put("/cart/notes", h.CartSetNotes)
			r.Delete("/cart", h.CartClear)
			r.Post("/cart/submit", h.CartSubmit)

			r.Get("/orders", h.OrdersList)
			r.Get("/orders/summary", h.OrdersSummary)
			r.Get("/orders/receipt", h.OrdersReceipt)
		})
	})

	if wsServer != nil {
		r.With(middleware.SessionGuard(diner)).Get("/ws/tracking", wsServer.TrackingWS)
	}

	return r
}
