package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	authService "k9medics_backend/internals/features/users/auth/service"
	helper "k9medics_backend/internals/helpers"
)

type AuthController struct {
	Secret     string
	AdminEmail string
	AdminHash  string
	Now        func() time.Time
}

func NewAuthController(secret, adminEmail, adminHash string) *AuthController {
	return &AuthController{
		Secret:     secret,
		AdminEmail: adminEmail,
		AdminHash:  adminHash,
		Now:        time.Now,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ========================== LOGIN ==========================
// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input loginRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Email and password are required")
	}

	if err := authService.CheckAdminCredentials(input.Email, input.Password, ac.AdminEmail, ac.AdminHash); err != nil {
		log.Printf("[WARN] failed admin login for %q from %s", input.Email, c.IP())
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	token, exp, err := authService.IssueAccessToken(ac.Secret, strings.ToLower(strings.TrimSpace(input.Email)), ac.Now())
	if err != nil {
		log.Printf("[ERROR] issue access token: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to issue token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	return helper.JsonOK(c, "Login successful", fiber.Map{
		"access_token": token,
		"expires_at":   exp.UTC().Format(time.RFC3339),
	})
}

// ========================== LOGOUT ==========================
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
	return helper.JsonOK(c, "Logged out", nil)
}
