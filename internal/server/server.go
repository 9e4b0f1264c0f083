package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/auth"
	"github.com/Khodkerutuja/WaitlistWizard/internal/booking"
	"github.com/Khodkerutuja/WaitlistWizard/internal/config"
	"github.com/Khodkerutuja/WaitlistWizard/internal/inventory"
	"github.com/Khodkerutuja/WaitlistWizard/internal/notify"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/subscription"
	"github.com/Khodkerutuja/WaitlistWizard/internal/user"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifications *notify.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(50, 100))

	walletRepo := wallet.NewRepository(db)
	serviceRepo := service.NewRepository(db)
	subscriptionRepo := subscription.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	inventoryCoordinator := inventory.NewCoordinator(serviceRepo, subscriptionRepo)
	paymentProcessor := booking.NewProcessor(db, bookingRepo, serviceRepo, walletRepo, cfg.PlatformUserID, cfg.CommissionRateBps)
	refundCoordinator := booking.NewRefundCoordinator(db, bookingRepo, serviceRepo, walletRepo, inventoryCoordinator, cfg.PlatformUserID, cfg.CommissionRateBps)

	var notifier booking.Notifier
	if notifications != nil {
		notifier = notify.NewBookingNotifier(notifications)
	}
	bookingService := booking.NewService(db, bookingRepo, serviceRepo, inventoryCoordinator, paymentProcessor, refundCoordinator, notifier)

	userHandler := user.NewHandler(user.NewService(user.NewRepository(db), walletRepo, cfg.JWTSecret))
	walletHandler := wallet.NewHandlerWithRepository(walletRepo)
	serviceHandler := service.NewHandlerWithCatalog(service.NewCatalog(serviceRepo))
	subscriptionHandler := subscription.NewHandlerWithRepository(subscriptionRepo)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.POST("/wallet/topup", walletHandler.TopUp)
		protected.POST("/wallet/withdraw", walletHandler.Withdraw)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)

		protected.GET("/services", serviceHandler.List)
		protected.GET("/services/:serviceID", serviceHandler.Get)

		protected.POST("/bookings", bookingHandler.Create)
		protected.GET("/bookings", bookingHandler.ListMy)
		protected.GET("/bookings/:bookingID", bookingHandler.Get)
		protected.POST("/bookings/:bookingID/pay", bookingHandler.Pay)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.Cancel)

		protected.GET("/subscriptions", subscriptionHandler.ListMy)
	}

	if notifications != nil {
		notifyHandler := notify.NewHandler(notifications)
		protected.GET("/notifications", notifyHandler.Inbox)
	}

	providerMiddleware := auth.RequireRole(auth.RolePowerUser, auth.RoleAdmin)
	provider := router.Group("/provider")
	provider.Use(authMiddleware, providerMiddleware)
	{
		provider.POST("/services", serviceHandler.Create)
		provider.PATCH("/services/:serviceID", serviceHandler.Update)
		provider.PATCH("/services/:serviceID/status", serviceHandler.SetStatus)
		provider.DELETE("/services/:serviceID", serviceHandler.Delete)

		provider.GET("/bookings", bookingHandler.ListProvider)
		provider.POST("/bookings/:bookingID/reject", bookingHandler.Reject)
		provider.POST("/bookings/:bookingID/complete", bookingHandler.Complete)
	}

	adminMiddleware := auth.RequireRole(auth.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/wallets/:userID/adjust", walletHandler.AdminAdjust)
	}

	router.GET("/health", Health(db))
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
