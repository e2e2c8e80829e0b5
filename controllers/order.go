package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/middleware"
	"jewellery-backend/models"
	"jewellery-backend/services"
	"jewellery-backend/store"
	"jewellery-backend/utils"
)

// OrderController handles order-related requests.
type OrderController struct {
	Orders       *services.OrderService
	Users        store.UserStore
	EmailService *utils.EmailService
}

// NewOrderController creates a new OrderController.
func NewOrderController(orders *services.OrderService, users store.UserStore, emailService *utils.EmailService) *OrderController {
	return &OrderController{
		Orders:       orders,
		Users:        users,
		EmailService: emailService,
	}
}

// principalFrom converts the middleware claims into a service principal.
func principalFrom(r *http.Request) (services.Principal, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return services.Principal{}, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return services.Principal{}, false
	}
	return services.Principal{ID: id, Role: claims.Role}, true
}

type createOrderRequest struct {
	OrderItems      []models.OrderItem     `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	Notes           string                 `json:"notes"`
}

// CreateOrder validates and persists a new order for the caller.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.Create(ctx, principal.ID, services.CreateOrderInput{
		OrderItems:      req.OrderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	oc.notify(principal.ID, func(user *models.User) error {
		return oc.EmailService.SendOrderConfirmation(user.Email, user.Name, order)
	})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   order,
	})
}

// GetMyOrders lists the caller's own orders.
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	page := parsePage(r)
	orders, total, err := oc.Orders.ListForUser(ctx, principal.ID, r.URL.Query().Get("status"), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Orders retrieved successfully",
		"orders":     orders,
		"pagination": paginationFor(page, total),
	})
}

// GetOrderByID returns one order, visible to its owner or an admin.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.Get(ctx, principal, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order retrieved successfully",
		"order":   order,
	})
}

type cancelOrderRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// CancelOrder is the user-initiated cancellation path.
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req cancelOrderRequest
	// An empty body means "no reason given"; the service substitutes the
	// default.
	_ = json.NewDecoder(r.Body).Decode(&req)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.Cancel(ctx, principal, id, req.CancellationReason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	oc.notify(principal.ID, func(user *models.User) error {
		return oc.EmailService.SendOrderCancelled(user.Email, user.Name, order)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

// GetAllOrders lists orders across all users (admin).
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	in := services.AdminOrderListInput{
		Status:   query.Get("status"),
		City:     query.Get("city"),
		MinPrice: parseFloatQuery(r, "minPrice"),
		MaxPrice: parseFloatQuery(r, "maxPrice"),
		SortBy:   query.Get("sortBy"),
		SortDesc: query.Get("sortOrder") != "asc",
		Page:     parsePage(r),
	}
	if raw := query.Get("userId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		in.User = &id
	}
	if raw := query.Get("startDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			in.StartDate = &t
		}
	}
	if raw := query.Get("endDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			in.EndDate = &t
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	orders, total, err := oc.Orders.ListAll(ctx, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Orders retrieved successfully",
		"orders":     orders,
		"pagination": paginationFor(in.Page, total),
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateOrderStatus is the admin transition path.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.UpdateStatus(ctx, id, req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// AdminCancelOrder cancels on behalf of the shop; a reason is required.
func (oc *OrderController) AdminCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.AdminCancel(ctx, id, req.CancellationReason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	oc.notify(order.User, func(user *models.User) error {
		return oc.EmailService.SendOrderCancelled(user.Email, user.Name, order)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order cancelled successfully by admin",
		"order":   order,
	})
}

// GetOrderStats returns the trailing-window aggregation (admin).
func (oc *OrderController) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("period"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	stats, err := oc.Orders.Stats(ctx, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order statistics retrieved successfully",
		"stats":   stats,
	})
}

// notify looks up the user and sends a best-effort email off the request
// path.
func (oc *OrderController) notify(userID primitive.ObjectID, send func(*models.User) error) {
	if oc.EmailService == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := oc.Users.FindByID(ctx, userID)
		if err != nil {
			log.Printf("order notification: user lookup failed: %v", err)
			return
		}
		if err := send(user); err != nil {
			log.Printf("Failed to send email to %s: %v", user.Email, err)
		}
	}()
}
