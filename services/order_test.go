package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
	"jewellery-backend/store"
)

type orderEnv struct {
	svc    *OrderService
	orders *store.MemoryOrderStore
	items  *store.MemoryItemStore
	user   Principal
	admin  Principal
	ring   models.Item
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()

	orders := store.NewMemoryOrderStore()
	items := store.NewMemoryItemStore()

	ring := models.Item{
		Name:         "Gold Ring",
		Category:     "Rings",
		Price:        200,
		Availability: models.AvailabilityInStock,
	}
	require.NoError(t, items.Create(context.Background(), &ring))

	return &orderEnv{
		svc:    NewOrderService(orders, items),
		orders: orders,
		items:  items,
		user:   Principal{ID: primitive.NewObjectID(), Role: models.RoleUser},
		admin:  Principal{ID: primitive.NewObjectID(), Role: models.RoleAdmin},
		ring:   ring,
	}
}

func (e *orderEnv) validInput() CreateOrderInput {
	return CreateOrderInput{
		OrderItems: []models.OrderItem{
			{Item: e.ring.ID, Name: e.ring.Name, Price: 200, Quantity: 1},
		},
		ShippingAddress: models.ShippingAddress{
			Address:    "12 Harbour Road",
			City:       "Mombasa",
			PostalCode: "80100",
			Country:    "Kenya",
			Phone:      "+254700000000",
		},
		PaymentMethod: models.PaymentCreditCard,
		ItemsPrice:    200,
		TaxPrice:      20,
		ShippingPrice: 10,
	}
}

func (e *orderEnv) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := e.svc.Create(context.Background(), e.user.ID, e.validInput())
	require.NoError(t, err)
	return order
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	require.Error(t, err)
	serviceErr, ok := err.(*Error)
	require.True(t, ok, "expected *services.Error, got %T", err)
	return serviceErr.Kind
}

func TestCreateOrder(t *testing.T) {
	env := newOrderEnv(t)

	order, err := env.svc.Create(context.Background(), env.user.ID, env.validInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, env.user.ID, order.User)
	assert.Equal(t, 230.0, order.TotalPrice)
	assert.Equal(t, int64(1), order.Version)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)

	stored, err := env.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalPrice, stored.TotalPrice)
}

func TestCreateOrderIgnoresSubmittedTotal(t *testing.T) {
	env := newOrderEnv(t)

	in := env.validInput()
	in.ItemsPrice = 200
	in.TaxPrice = 0
	in.ShippingPrice = 0

	order, err := env.svc.Create(context.Background(), env.user.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 200.0, order.TotalPrice)
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*orderEnv, *CreateOrderInput)
		kind    Kind
		message string
	}{
		{
			name:    "empty order items",
			mutate:  func(e *orderEnv, in *CreateOrderInput) { in.OrderItems = nil },
			kind:    KindValidation,
			message: "Order items are required",
		},
		{
			name:    "missing city",
			mutate:  func(e *orderEnv, in *CreateOrderInput) { in.ShippingAddress.City = "" },
			kind:    KindValidation,
			message: "Shipping address is required",
		},
		{
			name:    "missing phone",
			mutate:  func(e *orderEnv, in *CreateOrderInput) { in.ShippingAddress.Phone = "" },
			kind:    KindValidation,
			message: "Shipping address is required",
		},
		{
			name:    "missing payment method",
			mutate:  func(e *orderEnv, in *CreateOrderInput) { in.PaymentMethod = "" },
			kind:    KindValidation,
			message: "Payment method is required",
		},
		{
			name:    "unknown payment method",
			mutate:  func(e *orderEnv, in *CreateOrderInput) { in.PaymentMethod = "Barter" },
			kind:    KindValidation,
			message: "Invalid payment method",
		},
		{
			name:    "zero quantity",
			mutate:  func(e *orderEnv, in *CreateOrderInput) { in.OrderItems[0].Quantity = 0 },
			kind:    KindValidation,
			message: "Quantity for item Gold Ring must be at least 1",
		},
		{
			name: "unknown item",
			mutate: func(e *orderEnv, in *CreateOrderInput) {
				in.OrderItems[0].Item = primitive.NewObjectID()
			},
			kind:    KindNotFound,
			message: "Item Gold Ring not found",
		},
		{
			name:    "price mismatch",
			mutate:  func(e *orderEnv, in *CreateOrderInput) { in.OrderItems[0].Price = 150 },
			kind:    KindPriceMismatch,
			message: "Price mismatch for item Gold Ring",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newOrderEnv(t)
			in := env.validInput()
			tc.mutate(env, &in)

			_, err := env.svc.Create(context.Background(), env.user.ID, in)
			assert.Equal(t, tc.kind, kindOf(t, err))
			assert.EqualError(t, err, tc.message)

			count, countErr := env.orders.Count(context.Background(), store.OrderFilter{})
			require.NoError(t, countErr)
			assert.Zero(t, count, "failed orders must not be persisted")
		})
	}
}

func TestCreateOrderOutOfStock(t *testing.T) {
	env := newOrderEnv(t)

	ring, err := env.items.FindByID(context.Background(), env.ring.ID)
	require.NoError(t, err)
	ring.Availability = models.AvailabilityOutOfStock
	require.NoError(t, env.items.Save(context.Background(), ring))

	_, err = env.svc.Create(context.Background(), env.user.ID, env.validInput())
	assert.Equal(t, KindUnavailable, kindOf(t, err))
	assert.EqualError(t, err, "Item Gold Ring is out of stock")
}

func TestCreateOrderDiscountPrice(t *testing.T) {
	env := newOrderEnv(t)

	ring, err := env.items.FindByID(context.Background(), env.ring.ID)
	require.NoError(t, err)
	discount := 150.0
	ring.DiscountPrice = &discount
	require.NoError(t, env.items.Save(context.Background(), ring))

	// The list price is no longer acceptable once a discount is set.
	in := env.validInput()
	_, err = env.svc.Create(context.Background(), env.user.ID, in)
	assert.Equal(t, KindPriceMismatch, kindOf(t, err))

	in.OrderItems[0].Price = 150
	order, err := env.svc.Create(context.Background(), env.user.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 150.0, order.OrderItems[0].Price)
}

func TestGetOrder(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	t.Run("owner can read", func(t *testing.T) {
		got, err := env.svc.Get(context.Background(), env.user, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("admin can read", func(t *testing.T) {
		_, err := env.svc.Get(context.Background(), env.admin, order.ID)
		assert.NoError(t, err)
	})

	t.Run("stranger denied", func(t *testing.T) {
		stranger := Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
		_, err := env.svc.Get(context.Background(), stranger, order.ID)
		assert.Equal(t, KindAccessDenied, kindOf(t, err))
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := env.svc.Get(context.Background(), env.user, primitive.NewObjectID())
		assert.Equal(t, KindNotFound, kindOf(t, err))
	})
}

func TestCancelOrder(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	cancelled, err := env.svc.Cancel(context.Background(), env.user, order.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Cancelled by user", cancelled.CancellationReason)
	assert.Equal(t, models.CancelledByUser, cancelled.CancelledBy)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestCancelOrderCustomReason(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	cancelled, err := env.svc.Cancel(context.Background(), env.user, order.ID, "Changed my mind")
	require.NoError(t, err)
	assert.Equal(t, "Changed my mind", cancelled.CancellationReason)
}

func TestCancelOrderGuards(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		kind    Kind
		message string
	}{
		{"already cancelled", models.StatusCancelled, KindAlreadyCancelled, "Order is already cancelled"},
		{"delivered", models.StatusDelivered, KindCannotCancel, "Cannot cancel delivered order"},
		{"shipped", models.StatusShipped, KindCannotCancel, "Cannot cancel shipped order. Please contact support."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newOrderEnv(t)
			order := env.placeOrder(t)
			setOrderStatus(t, env.orders, order.ID, tc.status)

			_, err := env.svc.Cancel(context.Background(), env.user, order.ID, "")
			assert.Equal(t, tc.kind, kindOf(t, err))
			assert.EqualError(t, err, tc.message)
		})
	}
}

func TestCancelOrderNotOwner(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	stranger := Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, err := env.svc.Cancel(context.Background(), stranger, order.ID, "")
	assert.Equal(t, KindAccessDenied, kindOf(t, err))
}

func TestAdminCancelOrder(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	t.Run("reason required", func(t *testing.T) {
		_, err := env.svc.AdminCancel(context.Background(), order.ID, "")
		assert.Equal(t, KindValidation, kindOf(t, err))
		assert.EqualError(t, err, "Cancellation reason is required")
	})

	t.Run("cancels with attribution", func(t *testing.T) {
		cancelled, err := env.svc.AdminCancel(context.Background(), order.ID, "Payment fraud suspected")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)
		assert.Equal(t, models.CancelledByAdmin, cancelled.CancelledBy)
		assert.Equal(t, "Payment fraud suspected", cancelled.CancellationReason)
		require.NotNil(t, cancelled.CancelledAt)
	})

	t.Run("already cancelled", func(t *testing.T) {
		_, err := env.svc.AdminCancel(context.Background(), order.ID, "again")
		assert.Equal(t, KindAlreadyCancelled, kindOf(t, err))
	})
}

func TestAdminCancelDeliveredOrder(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)
	setOrderStatus(t, env.orders, order.ID, models.StatusDelivered)

	_, err := env.svc.AdminCancel(context.Background(), order.ID, "too late")
	assert.Equal(t, KindCannotCancel, kindOf(t, err))
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	t.Run("status required", func(t *testing.T) {
		_, err := env.svc.UpdateStatus(context.Background(), order.ID, "", "")
		assert.Equal(t, KindValidation, kindOf(t, err))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := env.svc.UpdateStatus(context.Background(), order.ID, "Teleported", "")
		assert.Equal(t, KindInvalidStatus, kindOf(t, err))
	})

	t.Run("forward transition", func(t *testing.T) {
		updated, err := env.svc.UpdateStatus(context.Background(), order.ID, models.StatusConfirmed, "confirmed after payment")
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, updated.Status)
		assert.Equal(t, "confirmed after payment", updated.Notes)
	})

	t.Run("delivered sets delivery fields", func(t *testing.T) {
		updated, err := env.svc.UpdateStatus(context.Background(), order.ID, models.StatusDelivered, "")
		require.NoError(t, err)
		assert.True(t, updated.IsDelivered)
		require.NotNil(t, updated.DeliveredAt)
	})
}

func TestUpdateOrderStatusCancellation(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	updated, err := env.svc.UpdateStatus(context.Background(), order.ID, models.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.CancelledByAdmin, updated.CancelledBy)
	require.NotNil(t, updated.CancelledAt)
}

func TestUpdateOrderStatusAlreadyCancelled(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	_, err := env.svc.Cancel(context.Background(), env.user, order.ID, "")
	require.NoError(t, err)

	// Cancelling a cancelled order must be rejected, not silently re-stamped
	// with admin attribution.
	_, err = env.svc.UpdateStatus(context.Background(), order.ID, models.StatusCancelled, "")
	assert.Equal(t, KindAlreadyCancelled, kindOf(t, err))

	stored, err := env.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CancelledByUser, stored.CancelledBy)
}

func TestUpdateOrderStatusOutOfCancelled(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	cancelled, err := env.svc.Cancel(context.Background(), env.user, order.ID, "")
	require.NoError(t, err)
	cancelledAt := *cancelled.CancelledAt

	refunded, err := env.svc.UpdateStatus(context.Background(), order.ID, models.StatusRefunded, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRefunded, refunded.Status)
	assert.Equal(t, models.CancelledByUser, refunded.CancelledBy)
	require.NotNil(t, refunded.CancelledAt)
	assert.Equal(t, cancelledAt, *refunded.CancelledAt)
}

// staleOrderStore returns orders one version behind, simulating a concurrent
// writer between read and save.
type staleOrderStore struct {
	*store.MemoryOrderStore
}

func (s staleOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.MemoryOrderStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Version--
	return order, nil
}

func TestCancelOrderConcurrentModification(t *testing.T) {
	env := newOrderEnv(t)
	order := env.placeOrder(t)

	stale := NewOrderService(staleOrderStore{env.orders}, env.items)
	_, err := stale.Cancel(context.Background(), env.user, order.ID, "")
	assert.Equal(t, KindConflict, kindOf(t, err))
	assert.EqualError(t, err, "Order was modified concurrently, please retry")

	stored, findErr := env.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, findErr)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestListForUser(t *testing.T) {
	env := newOrderEnv(t)
	first := env.placeOrder(t)
	env.placeOrder(t)
	_, err := env.svc.Cancel(context.Background(), env.user, first.ID, "")
	require.NoError(t, err)

	other := Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	in := env.validInput()
	_, err = env.svc.Create(context.Background(), other.ID, in)
	require.NoError(t, err)

	orders, total, err := env.svc.ListForUser(context.Background(), env.user.ID, "", store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	cancelled, total, err := env.svc.ListForUser(context.Background(), env.user.ID, models.StatusCancelled, store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)
}

func TestListAllFilters(t *testing.T) {
	env := newOrderEnv(t)
	env.placeOrder(t)

	in := env.validInput()
	in.ShippingAddress.City = "Nairobi"
	in.OrderItems[0].Quantity = 3
	in.ItemsPrice = 600
	_, err := env.svc.Create(context.Background(), env.user.ID, in)
	require.NoError(t, err)

	t.Run("by city substring", func(t *testing.T) {
		orders, total, err := env.svc.ListAll(context.Background(), AdminOrderListInput{City: "nairo"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "Nairobi", orders[0].ShippingAddress.City)
	})

	t.Run("by price range", func(t *testing.T) {
		min := 500.0
		orders, total, err := env.svc.ListAll(context.Background(), AdminOrderListInput{MinPrice: &min})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, 630.0, orders[0].TotalPrice)
	})

	t.Run("by user", func(t *testing.T) {
		_, total, err := env.svc.ListAll(context.Background(), AdminOrderListInput{User: &env.user.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestOrderStats(t *testing.T) {
	env := newOrderEnv(t)

	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	env.svc.now = func() time.Time { return base }

	seed := func(total float64, status string, createdAt time.Time) {
		order := models.Order{
			User:       env.user.ID,
			TotalPrice: total,
			Status:     status,
		}
		require.NoError(t, env.orders.Create(context.Background(), &order))
		// Backdate directly; Create stamps the current time.
		stored, err := env.orders.FindByID(context.Background(), order.ID)
		require.NoError(t, err)
		stored.CreatedAt = createdAt
		require.NoError(t, env.orders.Save(context.Background(), stored))
	}

	seed(100, models.StatusPending, base.AddDate(0, 0, -1))
	seed(250.555, models.StatusDelivered, base.AddDate(0, 0, -1))
	seed(50, models.StatusCancelled, base.AddDate(0, 0, -5))
	seed(999, models.StatusDelivered, base.AddDate(0, 0, -45))

	stats, err := env.svc.Stats(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, "30 days", stats.Period)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 400.56, stats.TotalRevenue)
	assert.Equal(t, 133.52, stats.AverageOrderValue)
	assert.Equal(t, map[string]int{
		models.StatusPending:   1,
		models.StatusDelivered: 1,
		models.StatusCancelled: 1,
	}, stats.StatusBreakdown)

	dayBefore := base.AddDate(0, 0, -1).Format("2006-01-02")
	assert.InDelta(t, 350.555, stats.DailyRevenue[dayBefore], 0.0001)
}

func TestOrderStatsEmpty(t *testing.T) {
	env := newOrderEnv(t)

	stats, err := env.svc.Stats(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "30 days", stats.Period)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.TotalRevenue)
	assert.Zero(t, stats.AverageOrderValue)
}

func setOrderStatus(t *testing.T, orders *store.MemoryOrderStore, id primitive.ObjectID, status string) {
	t.Helper()
	order, err := orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	order.Status = status
	require.NoError(t, orders.Save(context.Background(), order))
}
