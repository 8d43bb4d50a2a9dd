package controllers

import (
	"errors"

	"pos-app/middleware"
	"pos-app/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type GoodsReceiptController struct {
	Service *services.GoodsReceiptService
}

func NewGoodsReceiptController(service *services.GoodsReceiptService) *GoodsReceiptController {
	return &GoodsReceiptController{Service: service}
}

func (c *GoodsReceiptController) CreateReceipt(ctx *fiber.Ctx) error {
	var input struct {
		SupplierName string `json:"supplier_name" validate:"required,min=2"`
		Notes        string `json:"notes"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	receipt, err := c.Service.CreateReceipt(input.SupplierName, input.Notes, middleware.UserID(ctx))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Goods receipt created", "data": receipt})
}

func (c *GoodsReceiptController) GetAllReceipts(ctx *fiber.Ctx) error {
	receipts, err := c.Service.ListReceipts()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": receipts})
}

func (c *GoodsReceiptController) GetReceiptDetail(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	receipt, err := c.Service.GetReceipt(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrReceiptNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Receipt not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": receipt})
}

func (c *GoodsReceiptController) AddLine(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	var input struct {
		ProductID uint    `json:"product_id" validate:"required"`
		Quantity  int     `json:"quantity" validate:"required,gt=0"`
		UnitCost  float64 `json:"unit_cost" validate:"gte=0"`
		Notes     string  `json:"notes"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	line, err := c.Service.AddLine(uint(id), input.ProductID, input.Quantity, input.UnitCost, input.Notes, middleware.UserID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReceiptNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Receipt not found"})
		case errors.Is(err, services.ErrProductNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Product not found"})
		case errors.Is(err, services.ErrReceiptPosted):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "Receipt already posted"})
		case errors.Is(err, services.ErrInvalidQuantity):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Quantity must be greater than zero"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Line added", "data": line})
}

func (c *GoodsReceiptController) PostReceipt(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	var input struct {
		PostedBy string `json:"posted_by"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if input.PostedBy == "" {
		input.PostedBy = middleware.UserName(ctx)
	}

	updated, err := c.Service.PostReceipt(uint(id), input.PostedBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReceiptNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Receipt not found"})
		case errors.Is(err, services.ErrReceiptPosted):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "Receipt already posted"})
		case errors.Is(err, services.ErrReceiptEmpty):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Receipt has no lines"})
		case errors.Is(err, services.ErrMissingActor):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "posted_by is required"})
		case errors.Is(err, services.ErrProductNotFound):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "A received product no longer exists"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Receipt posted",
		"data":    fiber.Map{"updated_count": updated},
	})
}
