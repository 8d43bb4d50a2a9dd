package middleware

import (
	"strings"

	"pos-app/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and puts the user identity into
// ctx locals (userID, name, role) for handlers to consume.
func AuthMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Missing Authorization header",
		})
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid Authorization header format",
		})
	}

	token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: Invalid signing method")
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized: Invalid token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized: Invalid claims",
		})
	}

	ctx.Locals("userID", claims["user_id"])
	ctx.Locals("name", claims["name"])
	ctx.Locals("role", claims["role"])

	return ctx.Next()
}

// UserID reads the authenticated user's id from ctx locals. Claims decode
// numbers as float64.
func UserID(ctx *fiber.Ctx) int {
	if id, ok := ctx.Locals("userID").(float64); ok {
		return int(id)
	}
	return 0
}

// UserName reads the authenticated user's display name from ctx locals.
func UserName(ctx *fiber.Ctx) string {
	if name, ok := ctx.Locals("name").(string); ok {
		return name
	}
	return ""
}
