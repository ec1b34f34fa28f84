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
)

// paymentInfo shows what a pending order is going to cost before the buyer
// confirms the simulated checkout.
func paymentInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "order_id")
		if !ok {
			return
		}
		user := middleware.CurrentUser(c)

		var order model.Order
		if err := db.Preload("Items.Product").
			Where("id = ? AND user_id = ?", id, user.ID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Order not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to fetch payment info")
			return
		}
		if order.Status != model.OrderPending {
			respondError(c, http.StatusBadRequest, "Order is already processed")
			return
		}

		items := make([]gin.H, 0, len(order.Items))
		for _, item := range order.Items {
			productName := ""
			if item.Product != nil {
				productName = item.Product.Name
			}
			items = append(items, gin.H{
				"product_name": productName,
				"quantity":     item.Quantity,
				"unit_price":   item.UnitPrice,
				"subtotal":     item.Subtotal,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order": gin.H{
				"order_id":    order.ID,
				"order_no":    order.OrderNo,
				"total_price": order.TotalPrice,
				"status":      order.Status,
				"items":       items,
			},
		})
	}
}

// confirmPayment flips a pending order to paid and records the payment in the
// same transaction. The UPDATE is conditional on status so a double submit
// cannot pay twice: the loser sees zero rows and gets the "already processed"
// answer.
func confirmPayment(db *gorm.DB, outbox *queue.Outbox, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OrderID uint `json:"order_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		user := middleware.CurrentUser(c)

		var order model.Order
		if err := db.Where("id = ? AND user_id = ?", req.OrderID, user.ID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Order not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to confirm payment")
			return
		}

		now := time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&model.Order{}).
				Where("id = ? AND status = ?", order.ID, model.OrderPending).
				Update("status", model.OrderPaid)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errOrderProcessed
			}
			return tx.Create(&model.Payment{
				OrderID: order.ID,
				Amount:  order.TotalPrice,
				Method:  model.PaymentMethodSimulated,
				PaidAt:  now,
			}).Error
		})
		if err != nil {
			if errors.Is(err, errOrderProcessed) {
				respondError(c, http.StatusBadRequest, "Order is already processed")
				return
			}
			logger.Error("payment confirm failed", zap.Uint("order_id", order.ID), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to confirm payment")
			return
		}

		order.Status = model.OrderPaid
		emitOrderEvent(c, outbox, logger, queue.EventOrderPaid, &order)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Payment confirmed successfully",
			"order": gin.H{
				"order_id":    order.ID,
				"order_no":    order.OrderNo,
				"total_price": order.TotalPrice,
				"status":      order.Status,
				"paid_at":     now,
			},
		})
	}
}

var errOrderProcessed = errors.New("order already processed")
