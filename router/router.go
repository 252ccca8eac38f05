package router

import (
	"log/slog"
	"net/http"

	"fanhub/cache"
	"fanhub/config"
	"fanhub/controllers"
	"fanhub/db"
	"fanhub/metrics"
	"fanhub/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// Dependencies are the shared handles the routes need.
type Dependencies struct {
	DB       *gorm.DB
	Cache    cache.Store
	Insights controllers.InsightGenerator
	Logger   *slog.Logger
}

// Initialize wires all routes and middlewares: public routes, authenticated routes,
// "validated" routes (Authorizer) and the admin / superadmin groups on top of them.
func Initialize(r *gin.Engine, cfg config.Configuration, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := deps.Cache
	if store == nil {
		store = cache.NewMemoryStore()
	}

	controllers.SetConfigurations(cfg)

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler())
	}
	r.Use(Logger(logger))
	r.Use(db.SetDBtoContext(deps.DB))
	r.Use(controllers.SetServicesToContext(store, deps.Insights))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")

	// Public (no auth)
	api.POST("/auth/register", controllers.Register)
	api.POST("/auth/login", controllers.Login)
	api.POST("/auth/refresh", controllers.Refresh)
	api.POST("/password/forgot", controllers.ForgotPasswordSendCode)
	api.POST("/password/check-token", controllers.CheckResetToken)
	api.POST("/password/reset", controllers.ResetPassword)
	api.GET("/associations", controllers.GetAssociations)

	// Payment provider callback, authenticated by signature
	api.POST("/subscriptions/webhook", controllers.PaymentWebhook)

	// Authenticated routes (token required, pending members allowed)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())
	auth.Use(Audit(logger))
	auth.POST("/auth/logout", controllers.Logout)
	auth.POST("/auth/resend-code", controllers.ResendActivationCode)
	auth.POST("/auth/activate/:code", controllers.ActivateMemberByCode)

	// Validated routes (token + active member)
	validated := auth.Group("")
	validated.Use(Authorizer())

	validated.GET("/me", controllers.Me)
	validated.PUT("/me", controllers.UpdateMe)
	validated.PUT("/me/password", controllers.ChangePassword)
	validated.GET("/me/badge", controllers.GetBadge)

	validated.GET("/associations/me", controllers.GetMyAssociation)

	validated.GET("/plans", controllers.GetPlans)
	validated.GET("/plans/:id", controllers.GetPlanByID)

	validated.POST("/subscriptions/checkout", controllers.Checkout)
	validated.GET("/subscriptions/me", controllers.GetMySubscriptions)
	validated.POST("/subscriptions/:id/cancel", controllers.CancelMySubscription)
	validated.PUT("/subscriptions/:id/auto-renew", controllers.SetAutoRenew)

	validated.GET("/news", controllers.GetNews)
	validated.GET("/news/:id", controllers.GetNewsByID)
	validated.GET("/comments", controllers.GetComments)
	validated.POST("/comments", controllers.CreateComment)
	validated.DELETE("/comments/:id", controllers.DeleteComment)

	validated.GET("/matches", controllers.GetMatches)
	validated.GET("/matches/:id", controllers.GetMatchByID)
	validated.POST("/tickets", controllers.PurchaseTickets)
	validated.GET("/tickets/me", controllers.GetMyTickets)
	validated.GET("/tickets/:id", controllers.GetTicketByID)
	validated.POST("/tickets/:id/cancel", controllers.CancelTicket)

	validated.GET("/shop/products", controllers.GetProducts)
	validated.GET("/shop/products/:id", controllers.GetProductByID)
	validated.POST("/shop/orders", controllers.CreateOrder)
	validated.GET("/shop/orders/me", controllers.GetMyOrders)

	validated.GET("/fantasy/players", controllers.GetPlayers)
	validated.GET("/fantasy/team", controllers.GetMyTeam)
	validated.PUT("/fantasy/team", controllers.SaveMyTeam)
	validated.GET("/fantasy/leaderboard", controllers.GetLeaderboard)

	validated.GET("/loyalty/points", controllers.GetPoints)
	validated.POST("/loyalty/redeem", controllers.RedeemPoints)
	validated.GET("/referrals/me", controllers.GetMyReferrals)

	validated.GET("/notifications", controllers.GetNotifications)
	validated.POST("/notifications/read-all", controllers.MarkAllNotificationsRead)
	validated.POST("/notifications/:id/read", controllers.MarkNotificationRead)
	validated.POST("/push/register", controllers.RegisterPushToken)
	validated.POST("/push/unregister", controllers.UnregisterPushToken)

	validated.GET("/ai/insights/match/:id", controllers.GetMatchInsight)

	// Admin routes (association staff)
	admin := validated.Group("")
	admin.Use(Adminizer())

	admin.PUT("/associations/me", controllers.UpdateMyAssociation)

	admin.GET("/admin/members", controllers.GetMembers)
	admin.PUT("/admin/members/:id/status", controllers.UpdateMemberStatus)
	admin.PUT("/admin/members/:id/tier", controllers.UpdateMemberTier)

	admin.POST("/plans", controllers.CreatePlan)
	admin.PUT("/plans/:id", controllers.UpdatePlan)
	admin.DELETE("/plans/:id", controllers.DeletePlan)

	admin.GET("/admin/subscriptions", controllers.GetSubscriptions)
	admin.PUT("/admin/subscriptions/:id/status", controllers.UpdateSubscriptionStatus)

	admin.POST("/news", controllers.CreateNews)
	admin.PUT("/news/:id", controllers.UpdateNews)
	admin.DELETE("/news/:id", controllers.DeleteNews)
	admin.POST("/news/:id/publish", controllers.PublishNews)

	admin.POST("/matches", controllers.CreateMatch)
	admin.PUT("/matches/:id", controllers.UpdateMatch)
	admin.PUT("/matches/:id/score", controllers.UpdateMatchScore)
	admin.DELETE("/matches/:id", controllers.DeleteMatch)
	admin.POST("/tickets/validate", controllers.ValidateTicket)

	admin.POST("/shop/products", controllers.CreateProduct)
	admin.PUT("/shop/products/:id", controllers.UpdateProduct)
	admin.DELETE("/shop/products/:id", controllers.DeleteProduct)
	admin.GET("/admin/orders", controllers.GetOrders)
	admin.PUT("/admin/orders/:id/status", controllers.UpdateOrderStatus)

	admin.POST("/fantasy/players", controllers.CreatePlayer)
	admin.PUT("/fantasy/players/:id", controllers.UpdatePlayer)

	admin.POST("/admin/notifications/broadcast", controllers.BroadcastNotification)

	admin.GET("/admin/dashboard/stats", controllers.GetDashboardStats)
	admin.GET("/admin/dashboard/signups-per-day", controllers.GetSignupsPerDay)
	admin.GET("/admin/logs", controllers.GetAuditLogs)
	admin.GET("/admin/exports/subscriptions.xlsx", controllers.ExportSubscriptions)
	admin.GET("/admin/exports/members.xlsx", controllers.ExportMembers)

	// Superadmin routes (platform operator)
	superadmin := validated.Group("")
	superadmin.Use(Superadminizer())
	superadmin.POST("/associations", controllers.CreateAssociation)
	superadmin.PUT("/associations/:id", controllers.UpdateAssociation)
	superadmin.DELETE("/associations/:id", controllers.DeleteAssociation)

	logger.Info("routes initialized")
}
