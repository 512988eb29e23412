package stub

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server is the in-memory stand-in for the POS backend. It exists so the
// console and the client test suite can run without the real backend; it
// mirrors the REST surface the console consumes, including the session and
// CSRF handshake.
type Server struct {
	store      *Store
	sessions   *sessions
	logger     *zap.Logger
	httpServer *http.Server
}

func New(port int, store *Store, logger *zap.Logger) *Server {
	s := &Server{
		store:    store,
		sessions: newSessions(),
		logger:   logger,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	return s
}

// Router builds the full route tree. Exposed separately so tests can mount
// it on httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession, requireCSRF)

		r.Get("/api/auth/me", s.handleCurrentUser)
		r.Post("/api/auth/logout", s.handleLogout)

		r.Get("/api/tables", s.handleListTables)
		r.Get("/api/tables/{id}", s.handleGetTable)
		r.Patch("/api/tables/{id}/state", s.handleUpdateTableState)
		r.Patch("/api/tables/{id}/assign-order/{orderId}", s.handleAssignOrder)

		r.Get("/api/orders/table/{tableId}", s.handleOrdersByTable)
		r.Get("/api/orders/{id}", s.handleGetOrder)
		r.Post("/api/orders", s.handleCreateOrder)
		r.Patch("/api/orders/{id}/state", s.handleUpdateOrderState)
		r.Patch("/api/orders/{id}/calculate-total", s.handleCalculateTotal)

		r.Get("/api/order-items/order/{orderId}", s.handleOrderItemsByOrder)
		r.Post("/api/order-items/order/{orderId}", s.handleAddOrderItem)
		r.Delete("/api/order-items/{id}", s.handleDeleteOrderItem)

		r.Get("/api/menu-items", s.handleListMenuItems)
		r.Get("/api/menu-items/category/{category}", s.handleMenuItemsByCategory)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("stub request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", r.Header.Get("X-Request-Id")))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Start() error {
	s.logger.Info("starting stub backend", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("stub server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down stub backend")
	return s.httpServer.Shutdown(ctx)
}
