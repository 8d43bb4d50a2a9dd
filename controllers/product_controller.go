package controllers

import (
	"errors"
	"math"
	"time"

	"pos-app/cache"
	"pos-app/config"
	"pos-app/middleware"
	"pos-app/models"
	"pos-app/repositories"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductController struct {
	Repo  *repositories.ProductRepository
	Cache cache.ProductCache
}

func NewProductController(repo *repositories.ProductRepository, productCache cache.ProductCache) *ProductController {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	return &ProductController{Repo: repo, Cache: productCache}
}

func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var input struct {
		Name     string  `json:"name" validate:"required,min=2"`
		SKU      string  `json:"sku" validate:"required,min=2"`
		Barcode  string  `json:"barcode" validate:"required,min=4"`
		Unit     string  `json:"unit"`
		Price    float64 `json:"price" validate:"gte=0"`
		ImageURL string  `json:"image_url"`
		Stock    int     `json:"stock_quantity" validate:"gte=0"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	product := models.Product{
		Name:          input.Name,
		SKU:           input.SKU,
		Barcode:       input.Barcode,
		Unit:          input.Unit,
		Price:         input.Price,
		ImageURL:      input.ImageURL,
		StockQuantity: input.Stock,
		IsActive:      true,
		CreatedBy:     middleware.UserID(ctx),
	}

	if err := c.Repo.Create(&product); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Product created", "data": product})
}

func (c *ProductController) GetProductByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	product, err := c.Repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Product not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": product})
}

// SearchProducts serves the attachment picker: candidates ranked by exact
// barcode, exact SKU, then name substring, each with live stock. Results go
// through the product cache keyed by the query.
func (c *ProductController) SearchProducts(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Query is required"})
	}

	cacheKey := "product_search:" + query
	if cached, hit, err := c.Cache.Get(ctx.Context(), cacheKey); err == nil && hit {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": cached})
	}

	products, err := c.Repo.Search(query, ctx.QueryInt("limit", 20))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	ttl := time.Duration(config.CacheTTL) * time.Second
	if err := c.Cache.Set(ctx.Context(), cacheKey, products, ttl); err != nil {
		config.Log.WithError(err).Warn("product search cache set failed")
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": products})
}

func (c *ProductController) ListProductsPaged(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 20)
	query := ctx.Query("q")

	products, total, err := c.Repo.ListPaged(page, pageSize, query)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

func (c *ProductController) GetMovements(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	if _, err := c.Repo.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Product not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	movements, err := c.Repo.GetMovements(uint(id), ctx.QueryInt("limit", 50))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": movements})
}
