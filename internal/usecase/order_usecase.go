package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/domain/pricing"
	repo "app/internal/repository"
	"app/internal/validator"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 注文確定から配達予定日までの日数
const estimatedDeliveryDays = 7

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders}
}

type CheckoutItemInput struct {
	Product  string `json:"product"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderInput struct {
	Items           []CheckoutItemInput   `json:"items"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	CustomerNotes   string                `json:"customerNotes"`
}

// 注文確定。validate-then-commit：
// 1周目で全明細の在庫を読み取り検証し、スナップショットと金額を組み立てる。
// 2周目で条件付き減算を行う。どこかで失敗すればトランザクションごと戻るので、
// 在庫だけ減って注文が残らない、という壊れ方はしない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (model.Order, error) {
	if len(in.Items) == 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "No order items provided")
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "Quantity must be at least 1")
		}
	}
	if err := validator.ValidateShippingAddress(&in.ShippingAddress); err != nil {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !model.IsValidPaymentMethod(in.PaymentMethod) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "Invalid payment method")
	}
	if len(in.CustomerNotes) > 500 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "Notes cannot exceed 500 characters")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		// 注文者のスナップショット用
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrUserNotFound) {
			return NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 1周目：検証とスナップショット組み立て。在庫はまだ触らない。
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		lineSubtotals := make([]decimal.Decimal, 0, len(in.Items))

		for _, it := range in.Items {
			productID, err := primitive.ObjectIDFromHex(it.Product)
			if err != nil {
				return NewHTTPError(http.StatusBadRequest, "Invalid product id")
			}

			p, err := r.Products().FindByID(ctx, productID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("Product %s not found", it.Product))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			// 掲載停止中の商品は注文できない
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Product %s is no longer available", p.Name))
			}

			variant, err := p.FindVariant(it.Color, it.Size)
			if errors.Is(err, model.ErrColorNotFound) {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Color %s not available for %s", it.Color, p.Name))
			}
			if errors.Is(err, model.ErrSizeNotFound) {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Size %s not available for %s in %s", it.Size, p.Name, it.Color))
			}

			if variant.Stock < it.Quantity {
				return insufficientStockError(p.Name, it.Color, it.Size, variant.Stock)
			}

			price := pricing.FinalPrice(&p)
			lineSubtotal := pricing.LineSubtotal(price, it.Quantity)
			lineSubtotals = append(lineSubtotals, lineSubtotal)

			orderItems = append(orderItems, model.OrderItem{
				Product:         p.ID,
				ProductName:     p.Name,
				ProductImage:    p.MainImage,
				Brand:           p.Brand,
				Color:           it.Color,
				Size:            it.Size,
				PriceAtPurchase: pricing.ToAmount(price),
				Quantity:        it.Quantity,
				Subtotal:        pricing.ToAmount(lineSubtotal),
			})
		}

		// 2周目：条件付き減算。足りなければ（並行注文に先を越された場合も含めて）
		// ここで失敗してトランザクションごと巻き戻る。
		for i, it := range in.Items {
			ok, err := r.Inventory().DecreaseStockIfAvailable(ctx, orderItems[i].Product, it.Color, it.Size, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				available := 0
				if p, err := r.Products().FindByID(ctx, orderItems[i].Product); err == nil {
					if v, err := p.FindVariant(it.Color, it.Size); err == nil {
						available = v.Stock
					}
				}
				return insufficientStockError(orderItems[i].ProductName, it.Color, it.Size, available)
			}
		}

		subtotal := pricing.OrderSubtotal(lineSubtotals)
		tax := pricing.Tax(subtotal)
		shipping := pricing.ShippingCost(subtotal)
		total := pricing.Total(subtotal, tax, shipping)

		now := time.Now()
		estimated := now.AddDate(0, 0, estimatedDeliveryDays)

		order := model.Order{
			User:            user.ID,
			UserEmail:       user.Email,
			UserName:        user.Name,
			Items:           orderItems,
			ShippingAddress: in.ShippingAddress,
			Subtotal:        pricing.ToAmount(subtotal),
			Tax:             pricing.ToAmount(tax),
			ShippingCost:    pricing.ToAmount(shipping),
			TotalAmount:     pricing.ToAmount(total),
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   model.PaymentStatusPending,
			OrderStatus:     model.OrderStatusPending,
			StatusHistory: []model.StatusHistoryEntry{
				{Status: model.OrderStatusPending, Timestamp: now, Note: "Order placed"},
			},
			EstimatedDeliveryDate: &estimated,
			CustomerNotes:         in.CustomerNotes,
		}

		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = created
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

func insufficientStockError(name, color, size string, available int) error {
	return NewHTTPError(http.StatusBadRequest,
		fmt.Sprintf("Insufficient stock for %s (%s, size %s). Only %d available.", name, color, size, available))
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	orders, err := u.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return orders, nil
}

// 注文詳細。本人か管理者・出品者のみ。
func (u *OrderUsecase) GetOrderDetail(ctx context.Context, userID primitive.ObjectID, role model.Role, orderID primitive.ObjectID) (model.Order, error) {
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if o.User != userID && !role.IsElevated() {
		return model.Order{}, NewHTTPError(http.StatusForbidden, "Not authorized to view this order")
	}
	return o, nil
}

// キャンセル。本人のみ、Pending/Processingのみ。明細ぶんの在庫を戻す。
func (u *OrderUsecase) Cancel(ctx context.Context, userID primitive.ObjectID, orderID primitive.ObjectID) (model.Order, error) {
	var out model.Order

	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if o.User != userID {
			return NewHTTPError(http.StatusForbidden, "Not authorized to cancel this order")
		}
		if !o.CanBeCancelled() {
			return NewHTTPError(http.StatusBadRequest, "Order cannot be cancelled at this stage")
		}

		// 在庫戻し。注文後に商品やバリアントが消えていたら、その明細は飛ばす。
		for _, item := range o.Items {
			err := r.Inventory().IncreaseStock(ctx, item.Product, item.Color, item.Size, item.Quantity)
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		o.SetStatus(model.OrderStatusCancelled, "Cancelled by user", time.Now())
		if err := r.Orders().Replace(ctx, o); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = o
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}
