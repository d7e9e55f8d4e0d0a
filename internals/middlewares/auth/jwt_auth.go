package auth

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type AuthJWTOpts struct {
	Secret string
	// Skew tolerated on exp.
	Skew time.Duration
	Now  func() time.Time
}

// AuthJWT verifies an HS256 token and stores its claims in Locals.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	now := o.Now
	if now == nil {
		now = time.Now
	}

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		raw, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		// exp is checked below with our own clock and skew
		parser := jwt.NewParser(jwt.WithoutClaimsValidation())
		tok, err := parser.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		if err := validateTokenExpiry(claims, o.Skew, now()); err != nil {
			log.Printf("[WARN] rejected token: %v", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Token expired")
		}

		storeBasicClaimsToLocals(c, claims)
		return c.Next()
	}
}
