package routes

import (
	"pos-app/config"
	"pos-app/controllers"
	"pos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupStocktakeRoutes(app *fiber.App, stocktakeController *controllers.StocktakeController) {
	api := app.Group(config.MAIN_ROUTES+"/stocktakes", middleware.AuthMiddleware)

	api.Post("/", stocktakeController.CreateSession)
	api.Get("/", stocktakeController.GetAllSessions)
	api.Get("/:id", stocktakeController.GetSessionDetail)
	api.Put("/:id", stocktakeController.UpdateSession)
	api.Post("/:id/items", stocktakeController.AttachProduct)
	api.Put("/:id/items/:productId", stocktakeController.RecordCount)
	api.Post("/:id/balance", stocktakeController.Balance)
}
