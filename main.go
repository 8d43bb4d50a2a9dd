package main

import (
	"context"
	"log"

	"pos-app/cache"
	"pos-app/config"
	"pos-app/controllers"
	"pos-app/controllers/idgen"
	"pos-app/database"
	"pos-app/mailer"
	"pos-app/repositories"
	"pos-app/routes"
	"pos-app/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := config.CloseDB(db); err != nil {
			config.Log.WithError(err).Warn("failed to close database")
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}
	database.RunSeeders(db)

	idgen.Init()

	var productCache cache.ProductCache = cache.NoopProductCache{}
	if config.RedisAddr != "" {
		redisCache := cache.NewRedisProductCache(config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err := redisCache.Ping(context.Background()); err != nil {
			config.Log.WithError(err).Warn("redis unreachable, product cache disabled")
		} else {
			productCache = redisCache
			defer redisCache.Close()
		}
	}

	stocktakeRepo := repositories.NewStocktakeRepository(db)
	productRepo := repositories.NewProductRepository(db)
	receiptRepo := repositories.NewGoodsReceiptRepository(db)

	stocktakeService := services.NewStocktakeService(db, stocktakeRepo, mailer.NewFromConfig())
	receiptService := services.NewGoodsReceiptService(db, receiptRepo)

	authController := controllers.NewAuthController(db)
	stocktakeController := controllers.NewStocktakeController(stocktakeService)
	productController := controllers.NewProductController(productRepo, productCache)
	receiptController := controllers.NewGoodsReceiptController(receiptService)

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, authController)
	routes.SetupStocktakeRoutes(app, stocktakeController)
	routes.SetupProductRoutes(app, productController)
	routes.SetupGoodsReceiptRoutes(app, receiptController)

	config.Log.WithField("port", config.APP_PORT).Info("server starting")
	if err := app.Listen(":" + config.APP_PORT); err != nil {
		log.Fatal(err)
	}
}
