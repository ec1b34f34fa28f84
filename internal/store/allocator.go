package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"giftstore/internal/model"
)

// CartItem is one requested order line.
type CartItem struct {
	ProductID uint
	Quantity  int
}

// Allocator turns a cart into a persisted order with reserved gift codes, or
// rejects the whole attempt leaving no partial state.
//
// The flow is two-phase: a cheap read-only pre-check outside any transaction
// for fast failures, then a single transaction that inserts the order and its
// lines and claims codes with availability re-checked at commit time. The
// re-check is what prevents two concurrent orders from selling the same code.
type Allocator struct {
	db *gorm.DB
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{db: db}
}

// line is a validated cart line with its priced product snapshot.
type line struct {
	product  model.Product
	quantity int
	subtotal decimal.Decimal
}

// PlaceOrder validates the cart, reserves inventory and persists the order.
// On any error no Order, OrderItem or GiftCode mutation survives.
func (a *Allocator) PlaceOrder(ctx context.Context, userID uint, items []CartItem) (*model.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range items {
		if it.ProductID == 0 {
			return nil, &ValidationError{Msg: "product_id is required"}
		}
		if it.Quantity <= 0 {
			return nil, &ValidationError{Msg: fmt.Sprintf("quantity must be >= 1 for product %d", it.ProductID)}
		}
	}

	lines, total, err := a.validate(ctx, items)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNo:    NewOrderNo(),
		UserID:     userID,
		TotalPrice: total,
		Status:     model.OrderPending,
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, ln := range lines {
			item := model.OrderItem{
				OrderID:   order.ID,
				ProductID: ln.product.ID,
				Quantity:  ln.quantity,
				UnitPrice: ln.product.Price,
				Subtotal:  ln.subtotal,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			if err := reserveCodes(tx, order.ID, ln); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := a.db.WithContext(ctx).Preload("Items").First(order, order.ID).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// validate is the pre-check phase: every product must exist and be active,
// and the available pool must cover the requested quantity. Reads only, so a
// doomed cart fails before the store is touched for writes. Availability can
// still change before commit; reserveCodes re-checks it.
func (a *Allocator) validate(ctx context.Context, items []CartItem) ([]line, decimal.Decimal, error) {
	lines := make([]line, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		var p model.Product
		if err := a.db.WithContext(ctx).First(&p, it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, &ProductNotFoundError{ProductID: it.ProductID}
			}
			return nil, decimal.Zero, err
		}
		if !p.Active {
			return nil, decimal.Zero, &ProductInactiveError{ProductID: p.ID, Name: p.Name}
		}

		available, err := a.CountAvailable(ctx, p.ID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if available < int64(it.Quantity) {
			return nil, decimal.Zero, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Quantity,
				Available: int(available),
			}
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(subtotal)
		lines = append(lines, line{product: p, quantity: it.Quantity, subtotal: subtotal})
	}
	return lines, total, nil
}

// CountAvailable returns the sellable pool size for a product.
func (a *Allocator) CountAvailable(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&model.GiftCode{}).
		Where("product_id = ? AND status = ? AND order_id IS NULL", productID, model.CodeAvailable).
		Count(&n).Error
	return n, err
}

// reserveCodes claims exactly ln.quantity available codes for the order,
// oldest first so long-idle stock is used up before fresh stock.
//
// The availability predicate is repeated in the UPDATE: a concurrent order
// can reserve the same candidate rows between the SELECT and the UPDATE, in
// which case fewer rows flip and the whole transaction must roll back.
func reserveCodes(tx *gorm.DB, orderID uint, ln line) error {
	var ids []uint
	if err := tx.Model(&model.GiftCode{}).
		Where("product_id = ? AND status = ? AND order_id IS NULL", ln.product.ID, model.CodeAvailable).
		Order("created_at ASC, id ASC").
		Limit(ln.quantity).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) < ln.quantity {
		return &InsufficientStockError{
			ProductID: ln.product.ID,
			Name:      ln.product.Name,
			Requested: ln.quantity,
			Available: len(ids),
		}
	}

	res := tx.Model(&model.GiftCode{}).
		Where("id IN ? AND status = ? AND order_id IS NULL", ids, model.CodeAvailable).
		Updates(map[string]any{"status": model.CodeReserved, "order_id": orderID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(ln.quantity) {
		// Commit-time re-check failed: someone else reserved part of the
		// candidate set since the SELECT.
		return &InsufficientStockError{
			ProductID: ln.product.ID,
			Name:      ln.product.Name,
			Requested: ln.quantity,
			Available: int(res.RowsAffected),
		}
	}
	return nil
}

// NewOrderNo builds a short unique order number.
func NewOrderNo() string {
	return "GC" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:16]
}
