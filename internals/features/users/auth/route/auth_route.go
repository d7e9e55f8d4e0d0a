package route

import (
	"github.com/gofiber/fiber/v2"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/features/users/auth/controller"
	rateLimiter "k9medics_backend/internals/middlewares"
)

func AuthRoutes(app *fiber.App) {
	authController := controller.NewAuthController(configs.JWTSecret, configs.AdminEmail, configs.AdminPasswordHash)

	// Base: /api/auth
	baseAuth := app.Group("/api/auth")
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/logout", authController.Logout)
}
