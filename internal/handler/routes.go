package handler

import "github.com/gofiber/fiber/v2"

// Handlers bundles every HTTP handler registered by RegisterRoutes.
type Handlers struct {
	Restaurants *RestaurantHandler
	Discounts   *DiscountHandler
	Bookings    *BookingHandler
	Admin       *AdminHandler
	Health      *HealthHandler
}

// RegisterRoutes mounts the API. admin guards staff endpoints and limit
// throttles booking creation, QR check-in and login. Static segments are
// registered before the :id routes they would otherwise shadow.
func RegisterRoutes(app fiber.Router, h Handlers, admin, limit fiber.Handler) {
	app.Get("/health", h.Health.Check)

	api := app.Group("/api")
	api.Post("/auth/login", limit, h.Admin.Login)
	api.Get("/categories", h.Admin.Categories)
	api.Get("/admin/dashboard", admin, h.Admin.Dashboard)

	restaurants := api.Group("/restaurants")
	restaurants.Get("/", h.Restaurants.List)
	restaurants.Get("/search", h.Restaurants.Search)
	restaurants.Post("/", admin, h.Restaurants.Create)
	restaurants.Get("/:id", h.Restaurants.Get)
	restaurants.Put("/:id", admin, h.Restaurants.Update)
	restaurants.Delete("/:id", admin, h.Restaurants.Delete)
	restaurants.Put("/:id/timeslot", admin, h.Restaurants.UpsertTimeslot)
	restaurants.Get("/:id/timeslots", h.Restaurants.Timeslots)
	restaurants.Post("/:id/photos", admin, h.Restaurants.UploadPhoto)
	restaurants.Post("/:id/upload-photo", admin, h.Restaurants.UploadPhoto)
	restaurants.Delete("/:id/photos/:index", admin, h.Restaurants.DeletePhoto)

	bookings := api.Group("/bookings")
	bookings.Get("/discount_rules", h.Discounts.List)
	bookings.Post("/discount_rules", admin, h.Discounts.Create)
	bookings.Get("/discount_rules/:id", h.Discounts.Get)
	bookings.Put("/discount_rules/:id", admin, h.Discounts.Update)
	bookings.Delete("/discount_rules/:id", admin, h.Discounts.Delete)

	bookings.Get("/available-slots", h.Bookings.AvailableSlots)
	bookings.Get("/completed", admin, h.Bookings.Completed)
	bookings.Post("/verify-qr", admin, limit, h.Bookings.VerifyQR)
	bookings.Get("/", admin, h.Bookings.List)
	bookings.Post("/", limit, h.Bookings.Create)
	bookings.Get("/:id", h.Bookings.Get)
	bookings.Patch("/:id/status", admin, h.Bookings.UpdateStatus)
	bookings.Delete("/:id", admin, h.Bookings.Delete)
}
