package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/okalab/okalab-backend/internal/config"
	"github.com/okalab/okalab-backend/internal/http/handlers"
	"github.com/okalab/okalab-backend/internal/http/middleware"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
)

// Handlers все хэндлеры приложения.
type Handlers struct {
	Health     *handlers.HealthHandler
	WS         *handlers.WSHandler
	Seminar    *handlers.SeminarHandler
	Enrollment *handlers.EnrollmentHandler
	Payment    *handlers.PaymentHandler
	Wallet     *handlers.WalletHandler
	Withdrawal *handlers.WithdrawalHandler
	Settings   *handlers.SettingsHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.AccessTokenParser, limiterStore limiter.Store) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	api.GET("/ws", h.WS.Handle)

	// Публичные маршруты
	api.GET("/seminars/enrollment-counts", h.Seminar.Counts)
	api.GET("/seminars/:id/quote", middleware.UUIDValidator("id"), h.Seminar.Quote)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.POST("/seminars", middleware.RequireRole(authz.RoleProfessor, authz.RoleAdmin), h.Seminar.Create)
		protected.POST("/seminars/:id/enrollments", middleware.UUIDValidator("id"), h.Enrollment.Enroll)
		protected.GET("/seminars/:id/enrollments", middleware.UUIDValidator("id"), h.Enrollment.ListBySeminar)

		protected.GET("/enrollments", h.Enrollment.ListMine)
		protected.GET("/enrollments/:id/payability", middleware.UUIDValidator("id"), h.Enrollment.Payability)
		protected.DELETE("/enrollments/:id", middleware.UUIDValidator("id"), h.Enrollment.Cancel)

		protected.GET("/wallet", h.Wallet.Balance)
		protected.GET("/wallet/transactions", h.Wallet.Transactions)
		protected.GET("/withdrawals", h.Withdrawal.ListMine)
	}

	// Денежные команды дополнительно ограничены по частоте.
	money := api.Group("/")
	money.Use(middleware.AuthMiddleware(tokens))
	money.Use(middleware.RateLimitMiddleware(limiterStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		money.POST("/enrollments/:id/payment", middleware.UUIDValidator("id"), h.Payment.Submit)
		money.POST("/withdrawals", h.Withdrawal.Request)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(authz.RoleAdmin))
	{
		admin.GET("/enrollments", h.Enrollment.ListAll)
		admin.POST("/enrollments/:id/approve", middleware.UUIDValidator("id"), h.Payment.Approve)
		admin.POST("/enrollments/:id/reject", middleware.UUIDValidator("id"), h.Payment.Reject)

		admin.GET("/withdrawals", h.Withdrawal.ListAll)
		admin.POST("/withdrawals/:id/approve", middleware.UUIDValidator("id"), h.Withdrawal.Approve)
		admin.POST("/withdrawals/:id/reject", middleware.UUIDValidator("id"), h.Withdrawal.Reject)

		admin.GET("/wallets", h.Wallet.ListWallets)
		admin.POST("/wallets/credit", h.Wallet.Credit)
		admin.GET("/wallets/:id/reconcile", middleware.UUIDValidator("id"), h.Wallet.Reconcile)
		admin.GET("/transactions", h.Wallet.ListAllTransactions)

		admin.GET("/settings", h.Settings.Get)
		admin.PUT("/settings", h.Settings.Update)
	}

	return r
}
