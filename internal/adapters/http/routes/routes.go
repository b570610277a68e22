package routes

import (
	"time"

	"mentorhub/internal/adapters/http/handlers"
	"mentorhub/internal/adapters/http/middleware"
	"mentorhub/internal/adapters/persistence/repositories"
	"mentorhub/internal/config"
	"mentorhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	profileRepo := repositories.NewMentorProfileRepository(db)
	mentorshipRepo := repositories.NewMentorshipRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	configRepo := repositories.NewPlatformConfigRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService()
	paymentService := services.NewPaymentService()
	walletService := services.NewWalletService()

	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	mentorService := services.NewMentorService(profileRepo, userRepo)
	mentorshipService := services.NewMentorshipService(
		mentorshipRepo,
		bookingRepo,
		profileRepo,
		userRepo,
		paymentService,
		walletService,
		notifyService,
	)
	// Booked and completed sessions are settled against the mentorship budget
	bookingService := services.NewBookingService(
		bookingRepo,
		profileRepo,
		mentorshipService,
		notifyService,
		time.Duration(cfg.Policy.RescheduleLeadHours)*time.Hour,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	mentorHandler := handlers.NewMentorHandler(mentorService, bookingService)
	mentorshipHandler := handlers.NewMentorshipHandler(mentorshipService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	policyHandler := handlers.NewPolicyHandler(configRepo)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, mentorHandler,
		mentorshipHandler, bookingHandler, policyHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	mentorHandler *handlers.MentorHandler,
	mentorshipHandler *handlers.MentorshipHandler,
	bookingHandler *handlers.BookingHandler,
	policyHandler *handlers.PolicyHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Platform policies (public)
	router.Get("/policies", policyHandler.List)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Mentor directory (public browse, mentor-only profile management)
	mentorRoutes := router.Group("/mentors")
	setupMentorRoutes(mentorRoutes, mentorHandler, cfg)

	// Mentorship routes (Authenticated users)
	mentorshipRoutes := router.Group("/mentorships")
	mentorshipRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMentorshipRoutes(mentorshipRoutes, mentorshipHandler)

	// Booking routes (Authenticated users)
	bookingRoutes := router.Group("/bookings")
	bookingRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBookingRoutes(bookingRoutes, bookingHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited harder than the rest of the API
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupMentorRoutes configures mentor directory routes
func setupMentorRoutes(router fiber.Router, handler *handlers.MentorHandler, cfg *config.Config) {
	// Public directory
	router.Get("/", handler.ListMentors)
	router.Get("/:id", handler.GetMentor)
	router.Get("/:id/slots", handler.GetSlots)

	// Mentor-only profile management
	router.Put("/me/profile", middleware.AuthMiddleware(cfg), middleware.MentorOnly(), handler.UpsertProfile)
}

// setupMentorshipRoutes configures mentorship lifecycle routes
func setupMentorshipRoutes(router fiber.Router, handler *handlers.MentorshipHandler) {
	router.Post("/", handler.Request)
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)

	// Mentor decisions
	router.Post("/:id/accept", middleware.MentorOnly(), handler.Accept)
	router.Post("/:id/reject", middleware.MentorOnly(), handler.Reject)

	// Mentee date negotiation and payment
	router.Post("/:id/confirm-date", handler.ConfirmDate)
	router.Post("/:id/decline-date", handler.DeclineDate)
	router.Post("/:id/pay", handler.Pay)
	router.Post("/:id/verify-payment", handler.VerifyPayment)

	// Either party
	router.Post("/:id/confirm-completion", handler.ConfirmCompletion)
	router.Post("/:id/cancel", handler.Cancel)
	router.Post("/:id/feedback", handler.Feedback)
}

// setupBookingRoutes configures session booking routes
func setupBookingRoutes(router fiber.Router, handler *handlers.BookingHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)

	// Mentor decisions
	router.Post("/:id/approve", middleware.MentorOnly(), handler.Approve)
	router.Post("/:id/complete", middleware.MentorOnly(), handler.Complete)

	// Either party
	router.Post("/:id/cancel", handler.Cancel)
	router.Post("/:id/reschedule", handler.RequestReschedule)
	router.Post("/:id/reschedule/respond", handler.RespondReschedule)
}
