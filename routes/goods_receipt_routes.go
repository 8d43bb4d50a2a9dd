package routes

import (
	"pos-app/config"
	"pos-app/controllers"
	"pos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupGoodsReceiptRoutes(app *fiber.App, receiptController *controllers.GoodsReceiptController) {
	api := app.Group(config.MAIN_ROUTES+"/goods-receipts", middleware.AuthMiddleware)

	api.Post("/", receiptController.CreateReceipt)
	api.Get("/", receiptController.GetAllReceipts)
	api.Get("/:id", receiptController.GetReceiptDetail)
	api.Post("/:id/lines", receiptController.AddLine)
	api.Post("/:id/post", receiptController.PostReceipt)
}
