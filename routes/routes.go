package routes

import (
	"tableside/configs"
	"tableside/controllers"
	"tableside/middlewares"
	"tableside/repository"
	"tableside/services"
	"tableside/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *configs.Config, hub *ws.OrderHub) {
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Repositories
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tableRepo := repository.NewTableRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	// Services
	retry := services.RetryPolicy{MaxAttempts: cfg.ReconcileRetries, Backoff: cfg.ReconcileBackoff}
	authSvc := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL)
	cartSvc := services.NewCartService(db, cartRepo, menuRepo)
	orderSvc := services.NewOrderService(db, orderRepo, cartRepo, tableRepo, menuRepo, couponRepo, creditRepo, hub, retry)
	couponSvc := services.NewCouponService(db, couponRepo, cartRepo, menuRepo)
	dispatcher := services.NewCommandDispatcher(orderSvc, cartSvc, menuRepo, tableRepo)

	orderSvc.Start()

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc)
	cartCtrl := controllers.NewCartController(cartSvc, orderSvc)
	orderCtrl := controllers.NewOrderController(orderSvc, dispatcher)
	payCtrl := controllers.NewPaymentController(dispatcher, creditRepo)
	couponCtrl := controllers.NewCouponController(couponSvc)
	tableCtrl := controllers.NewTableController(tableRepo, orderSvc)
	menuCtrl := controllers.NewMenuController(menuRepo)
	voiceCtrl := controllers.NewVoiceController(dispatcher)

	// Auth (public)
	a := r.Group("/auth")
	{
		a.POST("/login", authCtrl.Login)
	}
	aAuth := a.Group("", middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		aAuth.GET("/me", authCtrl.Me)
	}
	a.POST("/register", middlewares.AuthMiddleware(cfg.JWTSecret, "manager"), authCtrl.Register)

	// Staff terminal
	staff := r.Group("/", middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		staff.GET("/menu", menuCtrl.List)

		staff.GET("/tables", tableCtrl.List)
		staff.GET("/tables/:tableId", tableCtrl.Detail)

		staff.GET("/tables/:tableId/cart", cartCtrl.Get)
		staff.POST("/tables/:tableId/cart/items", cartCtrl.Add)
		staff.PATCH("/tables/:tableId/cart/items", cartCtrl.UpdateQty)
		staff.DELETE("/tables/:tableId/cart/items/:itemId", cartCtrl.RemoveItem)
		staff.DELETE("/tables/:tableId/cart", cartCtrl.Clear)

		staff.POST("/tables/:tableId/orders", orderCtrl.Place)
		staff.POST("/tables/:tableId/orders/add-more", orderCtrl.AddMore)
		staff.POST("/tables/:tableId/orders/cancel", orderCtrl.CancelAll)
		staff.POST("/tables/:tableId/orders/kot", orderCtrl.ReprintKot)
		staff.GET("/tables/:tableId/orders", orderCtrl.ListForTable)
		staff.GET("/tables/:tableId/orders/active", orderCtrl.ListActive)

		staff.POST("/tables/:tableId/payment", payCtrl.Pay)
		staff.GET("/credit/:customerId", payCtrl.ListCredit)

		staff.GET("/coupons", couponCtrl.List)
		staff.POST("/coupons/validate", couponCtrl.Validate)

		staff.POST("/voice/commands", voiceCtrl.Dispatch)
	}

	// Realtime order feed for terminals
	r.GET("/ws/orders/:venueId", middlewares.WSAuthMiddleware(cfg.JWTSecret), hub.HandleWebSocket)
}
