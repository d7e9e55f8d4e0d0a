package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/constants"
	bannerRoutes "k9medics_backend/internals/features/banners/dismissals/routes"
	donationRoutes "k9medics_backend/internals/features/donations/donations/routes"
	donationService "k9medics_backend/internals/features/donations/donations/service"
	authRoutes "k9medics_backend/internals/features/users/auth/route"
	authMiddleware "k9medics_backend/internals/middlewares/auth"
)

var startTime time.Time

type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client // nil disables banner routes
	Repo     donationService.Repository
	Provider donationService.Provider
	Sync     *donationService.StatusSync
	Checkout configs.CheckoutConfig
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoutes.AuthRoutes(app)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")
	donationRoutes.CheckoutPublicRoutes(public.Group("/checkout"), d.Repo, d.Provider, d.Sync, d.Checkout)
	if d.Redis != nil {
		bannerRoutes.BannerPublicRoutes(public.Group("/banners"), d.Redis)
	} else {
		log.Println("[WARN] Redis unavailable, banner routes disabled")
	}

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret: configs.JWTSecret,
			Skew:   30 * time.Second,
		}),
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("donations"), constants.AdminRoles...),
	)
	donationRoutes.DonationAdminRoutes(admin.Group("/donations"), d.Repo)
}
