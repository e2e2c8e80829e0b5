package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
	"jewellery-backend/store"
)

// Principal is the authenticated caller, supplied by the auth middleware.
type Principal struct {
	ID   primitive.ObjectID
	Role string
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// OrderService owns order creation validation and the status state machine.
type OrderService struct {
	orders store.OrderStore
	items  store.ItemStore
	now    func() time.Time
}

// NewOrderService wires an OrderService to its stores.
func NewOrderService(orders store.OrderStore, items store.ItemStore) *OrderService {
	return &OrderService{orders: orders, items: items, now: time.Now}
}

// CreateOrderInput is a proposed order as submitted by the client.
type CreateOrderInput struct {
	OrderItems      []models.OrderItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	ItemsPrice      float64
	TaxPrice        float64
	ShippingPrice   float64
	Notes           string
}

// Create validates a proposed order and persists it. Checks run in a fixed
// order and the first failure wins; nothing is written before every check
// passes. Stock is never decremented.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, in CreateOrderInput) (*models.Order, error) {
	if len(in.OrderItems) == 0 {
		return nil, E(KindValidation, "Order items are required")
	}
	if err := validateShippingAddress(in.ShippingAddress); err != nil {
		return nil, err
	}
	if in.PaymentMethod == "" {
		return nil, E(KindValidation, "Payment method is required")
	}
	if !models.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, E(KindValidation, "Invalid payment method")
	}

	for _, line := range in.OrderItems {
		if line.Quantity < 1 {
			return nil, E(KindValidation, "Quantity for item %s must be at least 1", line.Name)
		}
		item, err := s.items.FindByID(ctx, line.Item)
		if errors.Is(err, store.ErrNotFound) {
			return nil, E(KindNotFound, "Item %s not found", line.Name)
		}
		if err != nil {
			return nil, StoreError(err, "Server error while creating order")
		}
		if item.Availability == models.AvailabilityOutOfStock {
			return nil, E(KindUnavailable, "Item %s is out of stock", line.Name)
		}
		if line.Price != item.EffectivePrice() {
			return nil, E(KindPriceMismatch, "Price mismatch for item %s", line.Name)
		}
	}

	order := &models.Order{
		User:            userID,
		OrderItems:      in.OrderItems,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		Status:          models.StatusPending,
		Notes:           in.Notes,
	}
	order.RecalculateTotal()

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, StoreError(err, "Server error while creating order")
	}
	return order, nil
}

func validateShippingAddress(a models.ShippingAddress) error {
	if a.Address == "" || a.City == "" || a.PostalCode == "" || a.Country == "" || a.Phone == "" {
		return E(KindValidation, "Shipping address is required")
	}
	return nil
}

// Get returns an order visible to the principal: its owner or any admin.
func (s *OrderService) Get(ctx context.Context, p Principal, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.User != p.ID && !p.IsAdmin() {
		return nil, E(KindAccessDenied, "Access denied. You can only view your own orders.")
	}
	return order, nil
}

// ListForUser returns the principal's own orders, optionally narrowed by
// status, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID, status string, page store.Page) ([]models.Order, int64, error) {
	filter := store.OrderFilter{User: &userID, Status: status}
	orders, err := s.orders.Find(ctx, filter, store.Sort{Field: "createdAt", Desc: true}, page)
	if err != nil {
		return nil, 0, StoreError(err, "Server error while retrieving orders")
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, StoreError(err, "Server error while retrieving orders")
	}
	return orders, total, nil
}

// AdminOrderListInput narrows the admin order listing.
type AdminOrderListInput struct {
	Status    string
	User      *primitive.ObjectID
	City      string
	MinPrice  *float64
	MaxPrice  *float64
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	SortDesc  bool
	Page      store.Page
}

// ListAll returns orders across all users for administrators.
func (s *OrderService) ListAll(ctx context.Context, in AdminOrderListInput) ([]models.Order, int64, error) {
	filter := store.OrderFilter{
		Status:        in.Status,
		User:          in.User,
		City:          in.City,
		MinPrice:      in.MinPrice,
		MaxPrice:      in.MaxPrice,
		CreatedAfter:  in.StartDate,
		CreatedBefore: in.EndDate,
	}
	sortBy := store.Sort{Field: in.SortBy, Desc: in.SortDesc}
	if sortBy.Field == "" {
		sortBy = store.Sort{Field: "createdAt", Desc: true}
	}
	orders, err := s.orders.Find(ctx, filter, sortBy, in.Page)
	if err != nil {
		return nil, 0, StoreError(err, "Server error while retrieving orders")
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, StoreError(err, "Server error while retrieving orders")
	}
	return orders, total, nil
}

// Cancel is the user-initiated cancellation. Shipped orders must be
// escalated to an admin; Delivered and already-Cancelled orders cannot be
// cancelled at all.
func (s *OrderService) Cancel(ctx context.Context, p Principal, id primitive.ObjectID, reason string) (*models.Order, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.User != p.ID {
		return nil, E(KindAccessDenied, "Access denied. You can only cancel your own orders.")
	}

	switch order.Status {
	case models.StatusCancelled:
		return nil, E(KindAlreadyCancelled, "Order is already cancelled")
	case models.StatusDelivered:
		return nil, E(KindCannotCancel, "Cannot cancel delivered order")
	case models.StatusShipped:
		return nil, E(KindCannotCancel, "Cannot cancel shipped order. Please contact support.")
	}

	if reason == "" {
		reason = "Cancelled by user"
	}
	now := s.now()
	order.Status = models.StatusCancelled
	order.CancellationReason = reason
	order.CancelledBy = models.CancelledByUser
	order.CancelledAt = &now

	return s.saveOrder(ctx, order, "Server error while cancelling order")
}

// AdminCancel cancels any non-Delivered, non-Cancelled order. A reason is
// mandatory for admin cancellations.
func (s *OrderService) AdminCancel(ctx context.Context, id primitive.ObjectID, reason string) (*models.Order, error) {
	if reason == "" {
		return nil, E(KindValidation, "Cancellation reason is required")
	}

	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusCancelled {
		return nil, E(KindAlreadyCancelled, "Order is already cancelled")
	}
	if order.Status == models.StatusDelivered {
		return nil, E(KindCannotCancel, "Cannot cancel delivered order")
	}

	now := s.now()
	order.Status = models.StatusCancelled
	order.CancellationReason = reason
	order.CancelledBy = models.CancelledByAdmin
	order.CancelledAt = &now

	return s.saveOrder(ctx, order, "Server error while cancelling order")
}

// UpdateStatus is the admin transition path. The prior status is captured
// before assignment: only a real transition into Cancelled writes the
// cancellation attribution, and targeting Cancelled on an already-Cancelled
// order is rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, notes string) (*models.Order, error) {
	if status == "" {
		return nil, E(KindValidation, "Status is required")
	}
	if !models.IsValidOrderStatus(status) {
		return nil, E(KindInvalidStatus, "Invalid status value")
	}

	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if status == models.StatusCancelled && previous == models.StatusCancelled {
		return nil, E(KindAlreadyCancelled, "Order is already cancelled")
	}

	order.Status = status
	if notes != "" {
		order.Notes = notes
	}

	if status == models.StatusDelivered {
		now := s.now()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}
	if status == models.StatusCancelled && previous != models.StatusCancelled {
		now := s.now()
		order.CancelledBy = models.CancelledByAdmin
		order.CancelledAt = &now
	}

	return s.saveOrder(ctx, order, "Server error while updating order status")
}

// OrderStats is the derived read-side aggregation over a trailing window.
type OrderStats struct {
	Period            string             `json:"period"`
	TotalOrders       int                `json:"totalOrders"`
	TotalRevenue      float64            `json:"totalRevenue"`
	AverageOrderValue float64            `json:"averageOrderValue"`
	StatusBreakdown   map[string]int     `json:"statusBreakdown"`
	DailyRevenue      map[string]float64 `json:"dailyRevenue"`
}

// Stats aggregates orders created in the last `days` days. Daily buckets
// use server-local dates.
func (s *OrderService) Stats(ctx context.Context, days int) (*OrderStats, error) {
	if days < 1 {
		days = 30
	}
	since := s.now().AddDate(0, 0, -days)

	orders, err := s.orders.Find(ctx, store.OrderFilter{CreatedAfter: &since}, store.Sort{}, store.Page{})
	if err != nil {
		return nil, StoreError(err, "Server error while retrieving order statistics")
	}

	stats := &OrderStats{
		Period:          fmt.Sprintf("%d days", days),
		TotalOrders:     len(orders),
		StatusBreakdown: make(map[string]int),
		DailyRevenue:    make(map[string]float64),
	}

	var revenue float64
	for _, order := range orders {
		revenue += order.TotalPrice
		stats.StatusBreakdown[order.Status]++
		day := order.CreatedAt.Local().Format("2006-01-02")
		stats.DailyRevenue[day] += order.TotalPrice
	}
	stats.TotalRevenue = round2(revenue)
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = round2(revenue / float64(stats.TotalOrders))
	}
	return stats, nil
}

func (s *OrderService) findOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, E(KindNotFound, "Order not found")
	}
	if err != nil {
		return nil, StoreError(err, "Server error while retrieving order")
	}
	return order, nil
}

func (s *OrderService) saveOrder(ctx context.Context, order *models.Order, failureMessage string) (*models.Order, error) {
	err := s.orders.Save(ctx, order)
	if errors.Is(err, store.ErrConflict) {
		return nil, E(KindConflict, "Order was modified concurrently, please retry")
	}
	if err != nil {
		return nil, StoreError(err, failureMessage)
	}
	return order, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
