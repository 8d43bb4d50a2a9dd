package routes

import (
	"pos-app/config"
	"pos-app/controllers"
	"pos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupProductRoutes(app *fiber.App, productController *controllers.ProductController) {
	api := app.Group(config.MAIN_ROUTES+"/products", middleware.AuthMiddleware)

	api.Post("/", productController.CreateProduct)
	api.Get("/search", productController.SearchProducts)
	api.Get("/", productController.ListProductsPaged)
	api.Get("/:id", productController.GetProductByID)
	api.Get("/:id/movements", productController.GetMovements)
}
