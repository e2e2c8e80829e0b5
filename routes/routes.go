package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"jewellery-backend/controllers"
	"jewellery-backend/metrics"
	"jewellery-backend/middleware"
	"jewellery-backend/utils"
)

// Controllers bundles every controller the router dispatches to.
type Controllers struct {
	Auth       *controllers.AuthController
	Items      *controllers.ItemController
	Categories *controllers.CategoryController
	Prices     *controllers.PriceController
	Orders     *controllers.OrderController
	Queries    *controllers.QueryController
	Uploads    *controllers.UploadController
}

// RegisterRoutes sets up all the routes for the application.
func RegisterRoutes(router *mux.Router, c Controllers, tm *utils.TokenManager, m *metrics.ServerMetrics) {
	router.Use(middleware.Metrics(m))

	auth := middleware.Auth(tm)
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireRole("admin")(h))
	}
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	router.HandleFunc("/api/health", healthHandler).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Auth routes
	router.HandleFunc("/api/auth/user/register", c.Auth.RegisterUser).Methods("POST")
	router.HandleFunc("/api/auth/admin/register", c.Auth.RegisterAdmin).Methods("POST")
	router.HandleFunc("/api/auth/login", c.Auth.Login).Methods("POST")

	// Item routes
	router.Handle("/api/items", admin(c.Items.CreateItem)).Methods("POST")
	router.HandleFunc("/api/items", c.Items.GetAllItems).Methods("GET")
	router.HandleFunc("/api/items/search", c.Items.SearchItems).Methods("GET")
	router.HandleFunc("/api/items/category/{category}", c.Items.GetItemsByCategory).Methods("GET")
	router.HandleFunc("/api/items/{id}", c.Items.GetItemByID).Methods("GET")
	router.Handle("/api/items/{id}", admin(c.Items.UpdateItem)).Methods("PUT")
	router.Handle("/api/items/{id}", admin(c.Items.DeleteItem)).Methods("DELETE")

	// Category routes
	router.HandleFunc("/api/categories", c.Categories.GetAllCategories).Methods("GET")
	router.HandleFunc("/api/categories/{id}", c.Categories.GetCategoryByID).Methods("GET")
	router.Handle("/api/categories", admin(c.Categories.CreateCategory)).Methods("POST")
	router.Handle("/api/categories/{id}", admin(c.Categories.UpdateCategory)).Methods("PUT")
	router.Handle("/api/categories/{id}", admin(c.Categories.DeleteCategory)).Methods("DELETE")

	// Price routes
	router.HandleFunc("/api/prices", c.Prices.GetAllPrices).Methods("GET")
	router.HandleFunc("/api/prices/active", c.Prices.GetActivePrice).Methods("GET")
	router.HandleFunc("/api/prices/{id}", c.Prices.GetPriceByID).Methods("GET")
	router.Handle("/api/prices", admin(c.Prices.CreatePrice)).Methods("POST")
	router.Handle("/api/prices/{id}", admin(c.Prices.UpdatePrice)).Methods("PUT")
	router.Handle("/api/prices/{id}", admin(c.Prices.DeletePrice)).Methods("DELETE")
	router.Handle("/api/prices/{id}/toggle", admin(c.Prices.TogglePriceStatus)).Methods("PATCH")

	// Order routes (user)
	router.Handle("/api/orders", protect(c.Orders.CreateOrder)).Methods("POST")
	router.Handle("/api/orders/my-orders", protect(c.Orders.GetMyOrders)).Methods("GET")
	router.Handle("/api/orders/stats/overview", admin(c.Orders.GetOrderStats)).Methods("GET")
	router.Handle("/api/orders/{id}", protect(c.Orders.GetOrderByID)).Methods("GET")
	router.Handle("/api/orders/{id}/cancel", protect(c.Orders.CancelOrder)).Methods("PUT")

	// Order routes (admin)
	router.Handle("/api/orders", admin(c.Orders.GetAllOrders)).Methods("GET")
	router.Handle("/api/orders/{id}/status", admin(c.Orders.UpdateOrderStatus)).Methods("PUT")
	router.Handle("/api/orders/{id}/admin-cancel", admin(c.Orders.AdminCancelOrder)).Methods("PUT")

	// Query routes (user)
	router.Handle("/api/queries", protect(c.Queries.CreateQuery)).Methods("POST")
	router.Handle("/api/queries/my-queries", protect(c.Queries.GetMyQueries)).Methods("GET")

	// Query routes (admin); registered before the {id} routes so "admin"
	// is not captured as an id.
	router.Handle("/api/queries/admin/all", admin(c.Queries.GetAllQueries)).Methods("GET")
	router.Handle("/api/queries/admin/stats", admin(c.Queries.GetQueryStats)).Methods("GET")
	router.Handle("/api/queries/admin/bulk-update", admin(c.Queries.BulkUpdateQueries)).Methods("PUT")
	router.Handle("/api/queries/admin/{id}", admin(c.Queries.AdminUpdateQuery)).Methods("PUT")

	router.Handle("/api/queries/{id}", protect(c.Queries.GetQueryByID)).Methods("GET")
	router.Handle("/api/queries/{id}", protect(c.Queries.UpdateQuery)).Methods("PUT")
	router.Handle("/api/queries/{id}", protect(c.Queries.DeleteQuery)).Methods("DELETE")

	// Upload routes (admin)
	router.Handle("/api/image/upload", admin(c.Uploads.UploadImage)).Methods("POST")
	router.Handle("/api/image/readImages", admin(c.Uploads.GetAllImages)).Methods("GET")
	router.Handle("/api/image/delete/{filename}", admin(c.Uploads.DeleteImage)).Methods("DELETE")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"OK","message":"Server is healthy","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}
