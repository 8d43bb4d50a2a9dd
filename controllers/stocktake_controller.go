package controllers

import (
	"errors"

	"pos-app/middleware"
	"pos-app/repositories"
	"pos-app/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type StocktakeController struct {
	Service *services.StocktakeService
}

func NewStocktakeController(service *services.StocktakeService) *StocktakeController {
	return &StocktakeController{Service: service}
}

func (c *StocktakeController) CreateSession(ctx *fiber.Ctx) error {
	var input struct {
		BranchName string `json:"branch_name"`
		StaffName  string `json:"staff_name"`
		Notes      string `json:"notes"`
		Tags       string `json:"tags"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	// a session never fails validation on missing identity fields; the
	// orchestrator substitutes defaults
	if input.StaffName == "" {
		input.StaffName = middleware.UserName(ctx)
	}

	session, err := c.Service.CreateSession(input.BranchName, input.StaffName, input.Notes, input.Tags, middleware.UserID(ctx))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Stocktake session created",
		"data": fiber.Map{
			"session_id":   session.ID,
			"session_code": session.Code,
		},
	})
}

func (c *StocktakeController) GetAllSessions(ctx *fiber.Ctx) error {
	sessions, err := c.Service.ListSessions()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": sessions})
}

func (c *StocktakeController) GetSessionDetail(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	detail, err := c.Service.GetSessionDetail(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Session not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": detail})
}

func (c *StocktakeController) UpdateSession(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	var input struct {
		Status     *string `json:"status"`
		BranchName *string `json:"branch_name"`
		StaffName  *string `json:"staff_name"`
		Notes      *string `json:"notes"`
		Tags       *string `json:"tags"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	patch := repositories.SessionPatch{
		Status:     input.Status,
		BranchName: input.BranchName,
		StaffName:  input.StaffName,
		Notes:      input.Notes,
		Tags:       input.Tags,
	}

	if err := c.Service.UpdateSession(uint(id), patch, middleware.UserID(ctx)); err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Session not found"})
		case errors.Is(err, services.ErrNothingToUpdate):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Nothing to update"})
		case errors.Is(err, services.ErrStatusNotAllowed):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Use the balance endpoint to close a session"})
		case errors.Is(err, services.ErrSessionBalanced):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "Balanced sessions are read-only"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Session updated"})
}

func (c *StocktakeController) AttachProduct(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	var input struct {
		ProductID uint `json:"product_id" validate:"required"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	item, err := c.Service.AttachProduct(uint(id), input.ProductID, middleware.UserID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Session not found"})
		case errors.Is(err, services.ErrProductNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Product not found"})
		case errors.Is(err, services.ErrItemAttached):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "Product already attached to session"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Product attached", "data": item})
}

func (c *StocktakeController) RecordCount(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}
	productID, err := ctx.ParamsInt("productId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid product ID"})
	}

	var input struct {
		ActualQty *int   `json:"actual_qty" validate:"required,gte=0"`
		Reason    string `json:"reason"`
		Notes     string `json:"notes"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	item, err := c.Service.RecordCount(uint(id), uint(productID), *input.ActualQty, input.Reason, input.Notes, middleware.UserID(ctx))
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Item not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Count recorded", "data": item})
}

func (c *StocktakeController) Balance(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	var input struct {
		BalancedBy string `json:"balanced_by"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if input.BalancedBy == "" {
		input.BalancedBy = middleware.UserName(ctx)
	}

	updated, err := c.Service.Balance(uint(id), input.BalancedBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Session not found"})
		case errors.Is(err, services.ErrNothingToBalance):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Nothing to balance"})
		case errors.Is(err, services.ErrAlreadyBalanced):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "Session already balanced"})
		case errors.Is(err, services.ErrMissingActor):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "balanced_by is required"})
		case errors.Is(err, services.ErrProductNotFound):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "A counted product no longer exists"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Session balanced",
		"data":    fiber.Map{"updated_count": updated},
	})
}
