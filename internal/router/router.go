package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"giftstore/internal/config"
	"giftstore/internal/middleware"
	"giftstore/internal/queue"
	"giftstore/internal/store"
)

// Setup registers every HTTP route. rdb and outbox may be nil: deployments
// without Redis run unthrottled and without lifecycle events.
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, outbox *queue.Outbox, logger *zap.Logger, cfg config.AppConfig) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "pong"})
	})

	secret := []byte(cfg.JWTSecret)
	authRequired := middleware.RequireAuth(db, secret)
	adminOnly := middleware.RequireAdmin()

	// Throttle order creation and login only when Redis is configured.
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if rdb == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{middleware.RedisRateLimit(rdb, cfg.OrderRateLimit, cfg.OrderRateWindow), h}
	}

	alloc := store.NewAllocator(db)
	api := r.Group("/api")

	// Auth
	api.POST("/auth/register", register(db, cfg))
	api.POST("/auth/login", limited(login(db, cfg))...)
	api.GET("/auth/profile", authRequired, profile())

	// Catalog (public reads, admin writes)
	api.GET("/products", listProducts(db))
	api.GET("/products/:id", getProduct(db))
	api.POST("/products", authRequired, adminOnly, createProduct(db))
	api.PUT("/products/:id", authRequired, adminOnly, updateProduct(db))
	api.DELETE("/products/:id", authRequired, adminOnly, deleteProduct(db))

	api.GET("/categories", listCategories(db))
	api.GET("/categories/:id", getCategory(db))
	api.POST("/categories", authRequired, adminOnly, createCategory(db))
	api.PUT("/categories/:id", authRequired, adminOnly, updateCategory(db))
	api.DELETE("/categories/:id", authRequired, adminOnly, deleteCategory(db))

	// Gift code inventory (admin)
	api.GET("/gift-codes", authRequired, adminOnly, listGiftCodes(db))
	api.POST("/gift-codes/bulk", authRequired, adminOnly, bulkAddGiftCodes(db))
	api.POST("/gift-codes/generate", authRequired, adminOnly, generateGiftCodes(db))
	api.DELETE("/gift-codes/:id", authRequired, adminOnly, deleteGiftCode(db))

	// Orders
	api.POST("/orders", append([]gin.HandlerFunc{authRequired}, limited(createOrder(alloc, outbox, logger))...)...)
	api.GET("/orders", authRequired, adminOnly, listAllOrders(db))
	api.GET("/orders/my-orders", authRequired, myOrders(db))
	api.GET("/orders/:id", authRequired, orderDetail(db))
	api.PUT("/orders/:id/status", authRequired, adminOnly, updateOrderStatus(db, outbox, logger))

	// Payment (simulated)
	api.GET("/payment/:order_id", authRequired, paymentInfo(db))
	api.POST("/payment/confirm", authRequired, confirmPayment(db, outbox, logger))

	// Admin dashboard
	api.GET("/admin/stats", authRequired, adminOnly, dashboardStats(db))
}

// respondError writes the storefront's failure envelope.
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}
