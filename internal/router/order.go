package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"giftstore/internal/middleware"
	"giftstore/internal/model"
	"giftstore/internal/queue"
	"giftstore/internal/store"
)

// createOrder is the allocator entry point: cart in, pending order out, or a
// rejection that leaves zero trace.
func createOrder(alloc *store.Allocator, outbox *queue.Outbox, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var req struct {
			Items []struct {
				ProductID uint `json:"product_id"`
				Quantity  int  `json:"quantity"`
			} `json:"items"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		items := make([]store.CartItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, store.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		order, err := alloc.PlaceOrder(c.Request.Context(), user.ID, items)
		if err != nil {
			status, msg := allocationStatus(err)
			if status == http.StatusInternalServerError {
				logger.Error("order allocation failed", zap.Uint("user_id", user.ID), zap.Error(err))
			}
			respondError(c, status, msg)
			return
		}

		emitOrderEvent(c, outbox, logger, queue.EventOrderCreated, order)

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Order created successfully",
			"order": gin.H{
				"order_id":    order.ID,
				"order_no":    order.OrderNo,
				"total_price": order.TotalPrice,
				"status":      order.Status,
			},
		})
	}
}

// allocationStatus maps allocator errors onto the HTTP taxonomy. Anything
// unrecognized is a store failure: 500, never retried here.
func allocationStatus(err error) (int, string) {
	var (
		validation *store.ValidationError
		notFound   *store.ProductNotFoundError
		inactive   *store.ProductInactiveError
		stock      *store.InsufficientStockError
	)
	switch {
	case errors.Is(err, store.ErrEmptyCart):
		return http.StatusBadRequest, "Cart is empty"
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Msg
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &inactive):
		return http.StatusBadRequest, inactive.Error()
	case errors.As(err, &stock):
		return http.StatusConflict, stock.Error()
	default:
		return http.StatusInternalServerError, "Failed to create order"
	}
}

// myOrders lists the caller's orders, newest first.
func myOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var orders []model.Order
		if err := db.Preload("Items").
			Where("user_id = ?", user.ID).
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch orders")
			return
		}

		out := make([]gin.H, 0, len(orders))
		for _, o := range orders {
			out = append(out, gin.H{
				"order_id":    o.ID,
				"order_no":    o.OrderNo,
				"total_price": o.TotalPrice,
				"status":      o.Status,
				"order_date":  o.CreatedAt,
				"items_count": len(o.Items),
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": out})
	}
}

// orderDetail returns one order with its lines and the assigned codes grouped
// per product. Owners see their own orders; admins see any. A foreign order
// answers 404, not 403, so order ids are not probeable.
func orderDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		user := middleware.CurrentUser(c)

		var order model.Order
		q := db.Preload("Items.Product").Where("id = ?", id)
		if !user.IsAdmin() {
			q = q.Where("user_id = ?", user.ID)
		}
		if err := q.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Order not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to fetch order details")
			return
		}

		var codes []model.GiftCode
		if err := db.Where("order_id = ?", order.ID).Order("id ASC").Find(&codes).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch order details")
			return
		}
		codesByProduct := make(map[uint][]model.GiftCode, len(order.Items))
		for _, code := range codes {
			codesByProduct[code.ProductID] = append(codesByProduct[code.ProductID], code)
		}

		items := make([]gin.H, 0, len(order.Items))
		for _, item := range order.Items {
			productName := ""
			if item.Product != nil {
				productName = item.Product.Name
			}
			items = append(items, gin.H{
				"order_item_id": item.ID,
				"product_id":    item.ProductID,
				"product_name":  productName,
				"quantity":      item.Quantity,
				"unit_price":    item.UnitPrice,
				"subtotal":      item.Subtotal,
				"gift_codes":    codesByProduct[item.ProductID],
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order": gin.H{
				"order_id":    order.ID,
				"order_no":    order.OrderNo,
				"user_id":     order.UserID,
				"total_price": order.TotalPrice,
				"status":      order.Status,
				"order_date":  order.CreatedAt,
				"items":       items,
			},
		})
	}
}

// listAllOrders is the admin view: every order with buyer info.
func listAllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []model.Order
		if err := db.Preload("User").Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch orders")
			return
		}

		out := make([]gin.H, 0, len(orders))
		for _, o := range orders {
			userName, userEmail := "", ""
			if o.User != nil {
				userName, userEmail = o.User.Name, o.User.Email
			}
			out = append(out, gin.H{
				"order_id":    o.ID,
				"order_no":    o.OrderNo,
				"user_id":     o.UserID,
				"user_name":   userName,
				"user_email":  userEmail,
				"total_price": o.TotalPrice,
				"status":      o.Status,
				"order_date":  o.CreatedAt,
				"items_count": len(o.Items),
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": out})
	}
}

// updateOrderStatus applies an admin transition. Reserved codes are NOT
// released on cancel/refund: a code that has been exposed to a buyer has to
// be treated as leaked.
func updateOrderStatus(db *gorm.DB, outbox *queue.Outbox, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		switch req.Status {
		case model.OrderPending, model.OrderPaid, model.OrderCancelled, model.OrderRefunded:
		default:
			respondError(c, http.StatusBadRequest, "Invalid status")
			return
		}

		var order model.Order
		if err := db.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Order not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to update order status")
			return
		}
		if !model.ValidOrderTransition(order.Status, req.Status) {
			respondError(c, http.StatusBadRequest, "Invalid status transition")
			return
		}

		// Conditional on the old status so two concurrent admin updates
		// cannot both apply. An admin marking an order paid records the
		// payment too, same as buyer confirmation.
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&model.Order{}).
				Where("id = ? AND status = ?", order.ID, order.Status).
				Update("status", req.Status)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStatusChanged
			}
			if req.Status != model.OrderPaid {
				return nil
			}
			return tx.Create(&model.Payment{
				OrderID: order.ID,
				Amount:  order.TotalPrice,
				Method:  model.PaymentMethodSimulated,
				PaidAt:  time.Now(),
			}).Error
		})
		if err != nil {
			if errors.Is(err, errStatusChanged) {
				respondError(c, http.StatusConflict, "Order status changed concurrently")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to update order status")
			return
		}

		order.Status = req.Status
		eventType := queue.EventOrderStatusChanged
		if req.Status == model.OrderPaid {
			eventType = queue.EventOrderPaid
		}
		emitOrderEvent(c, outbox, logger, eventType, &order)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated successfully"})
	}
}

var errStatusChanged = errors.New("order status changed concurrently")

// emitOrderEvent appends a lifecycle event to the outbox, best effort.
func emitOrderEvent(c *gin.Context, outbox *queue.Outbox, logger *zap.Logger, eventType string, order *model.Order) {
	ev := queue.OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		UserID:     order.UserID,
		Total:      order.TotalPrice.StringFixed(2),
		Status:     order.Status,
		OccurredAt: time.Now(),
	}
	if err := outbox.Emit(c.Request.Context(), ev); err != nil {
		logger.Warn("order event emit failed",
			zap.String("event_type", eventType),
			zap.String("order_no", order.OrderNo),
			zap.Error(err))
	}
}
