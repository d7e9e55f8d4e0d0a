package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"k9medics_backend/internals/features/banners/dismissals/controller"
	"k9medics_backend/internals/features/banners/dismissals/service"
)

// BannerPublicRoutes mounts under /api/public/banners.
func BannerPublicRoutes(r fiber.Router, rdb *redis.Client) {
	ctrl := controller.NewDismissalController(service.NewStore(rdb))

	r.Get("/:key", ctrl.Status)
	r.Post("/:key/dismiss", ctrl.Dismiss)
}
