package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/bywater/internal/feed"
	"github.com/dukerupert/bywater/internal/handler"
	"github.com/dukerupert/bywater/internal/list"
	"github.com/dukerupert/bywater/internal/middleware"
	"github.com/dukerupert/bywater/internal/notify"
	"github.com/dukerupert/bywater/internal/push"
	"github.com/dukerupert/bywater/internal/store"
)

type Server struct {
	db             *sql.DB
	hub            *notify.Hub
	authH          *handler.AuthHandler
	productH       *handler.ProductHandler
	shoppingH      *handler.ShoppingHandler
	pushH          *handler.PushHandler
	householdStore *store.HouseholdStore
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := notify.NewHub(logger.With("component", "hub"))

	householdStore := store.NewHouseholdStore(db)
	productStore := store.NewProductStore(db)
	shoppingStore := store.NewShoppingStore(db)
	pushStore := store.NewPushStore(db)

	var notifier *push.Notifier
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc := push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		notifier = push.NewNotifier(pushSvc, pushStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	service := list.NewService(productStore, shoppingStore, hub, notifier, logger.With("component", "list"))

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(householdStore, logger.With("component", "auth")),
		productH:       handler.NewProductHandler(service, logger.With("component", "product")),
		shoppingH:      handler.NewShoppingHandler(service, logger.With("component", "shopping")),
		pushH:          pushH,
		householdStore: householdStore,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// Hub returns the notification hub, used by tests and diagnostics.
func (s *Server) Hub() *notify.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /api/health", s.healthHandler)

	// Protected routes — everything else requires a valid access key
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAccessKey(s.householdStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Product catalog
	mux.HandleFunc("GET /api/products", s.productH.List)
	mux.HandleFunc("POST /api/products", s.productH.Create)
	mux.HandleFunc("PUT /api/products/reorder", s.productH.Reorder)
	mux.HandleFunc("PUT /api/products/{id}", s.productH.Rename)
	mux.HandleFunc("DELETE /api/products/{id}", s.productH.Delete)

	// Shopping list
	mux.HandleFunc("GET /api/shopping", s.shoppingH.List)
	mux.HandleFunc("POST /api/shopping", s.shoppingH.Add)
	mux.HandleFunc("PUT /api/shopping/{id}", s.shoppingH.Update)
	mux.HandleFunc("DELETE /api/shopping/{id}", s.shoppingH.Delete)
	mux.HandleFunc("PUT /api/shopping/{id}/check", s.shoppingH.Check)
	mux.HandleFunc("POST /api/shopping/clear", s.shoppingH.Clear)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// Change feed
	mux.HandleFunc("GET /api/sse", feed.ServeSSE(s.hub, s.logger.With("component", "sse")))
	mux.HandleFunc("GET /ws", feed.ServeWS(s.hub, s.logger.With("component", "websocket")))
}
