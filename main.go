package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"jewellery-backend/config"
	"jewellery-backend/controllers"
	"jewellery-backend/metrics"
	"jewellery-backend/routes"
	"jewellery-backend/services"
	"jewellery-backend/store"
	"jewellery-backend/utils"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("Could not connect to MongoDB: ", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Println("Error disconnecting from MongoDB: ", err)
		}
	}()
	log.Println("Connected to MongoDB!")

	db := client.Database(cfg.MongoDatabase)

	orderStore := store.NewMongoOrderStore(db)
	itemStore := store.NewMongoItemStore(db)
	categoryStore := store.NewMongoCategoryStore(db)
	priceStore := store.NewMongoPriceStore(db)
	queryStore := store.NewMongoQueryStore(db)
	userStore := store.NewMongoUserStore(db)

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	emails := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender)
	serverMetrics := metrics.NewServerMetrics("api")

	orderService := services.NewOrderService(orderStore, itemStore)
	queryService := services.NewQueryService(queryStore)

	ctrls := routes.Controllers{
		Auth:       controllers.NewAuthController(userStore, tokens, cfg.AdminRegistrationCode),
		Items:      controllers.NewItemController(itemStore),
		Categories: controllers.NewCategoryController(categoryStore),
		Prices:     controllers.NewPriceController(priceStore),
		Orders:     controllers.NewOrderController(orderService, userStore, emails),
		Queries:    controllers.NewQueryController(queryService, userStore, emails),
		Uploads:    controllers.NewUploadController(cfg.UploadDir),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, ctrls, tokens, serverMetrics)

	log.Println("Server running on port " + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
