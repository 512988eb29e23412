package stub

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableside/internal/domain"
	"tableside/internal/dto"
	apperrors "tableside/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.MessageResponse{Message: message})
}

// writeStoreError maps the store's typed errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if _, ok := apperrors.IsValidationError(err); ok {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// Auth

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		s.logger.Warn("login rejected", zap.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.sessions.issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issuing session")
		return
	}
	csrfToken := uuid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// Readable by the client on purpose: the double-submit check needs the
	// value echoed back as a header.
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfToken,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("staff logged in", zap.String("username", user.Username), zap.Int64("userId", user.ID))
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Username:  user.Username,
		CSRFToken: csrfToken,
		Message:   "Login successful",
	})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: csrfCookieName, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logout successful"})
}

// Tables

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Tables())
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	table, err := s.store.Table(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleUpdateTableState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	table, err := s.store.UpdateTableState(id, domain.TableState(r.URL.Query().Get("state")))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleAssignOrder(w http.ResponseWriter, r *http.Request) {
	tableID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeError(w, http.StatusBadRequest, "orderId must be a positive integer")
		return
	}
	table, err := s.store.AssignOrderToTable(tableID, orderID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// Orders

func (s *Server) handleOrdersByTable(w http.ResponseWriter, r *http.Request) {
	tableID, ok := pathID(r, "tableId")
	if !ok {
		writeError(w, http.StatusBadRequest, "tableId must be a positive integer")
		return
	}
	writeJSON(w, http.StatusOK, s.store.OrdersByTable(tableID))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	order, err := s.store.Order(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	order, err := s.store.CreateOrder(req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("order created",
		zap.Int64("orderId", order.ID),
		zap.Int64("tableId", order.TableID),
		zap.Int("customerCount", order.CustomerCount))
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleUpdateOrderState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	order, err := s.store.UpdateOrderState(id, domain.OrderState(r.URL.Query().Get("state")))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleCalculateTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	order, err := s.store.CalculateOrderTotal(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Order items

func (s *Server) handleOrderItemsByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeError(w, http.StatusBadRequest, "orderId must be a positive integer")
		return
	}
	items, err := s.store.OrderItemsByOrder(orderID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddOrderItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeError(w, http.StatusBadRequest, "orderId must be a positive integer")
		return
	}
	var req dto.CreateOrderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	item, err := s.store.AddOrderItem(orderID, req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	if err := s.store.DeleteOrderItem(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Menu

func (s *Server) handleListMenuItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.MenuItems())
}

func (s *Server) handleMenuItemsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	writeJSON(w, http.StatusOK, s.store.MenuItemsByCategory(category))
}
