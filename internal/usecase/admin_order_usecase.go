package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, orders: orders}
}

type AdminOrderListOutput struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
}

// 注文一覧（管理者・出品者）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.IsValidOrderStatus(f.Status) {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return AdminOrderListOutput{Orders: orders, Total: total}, nil
}

type AdminUpdateOrderStatusInput struct {
	Status string
	Note   string
}

// ステータス更新。遷移テーブルで縛る。
// Cancelledへの遷移なら在庫を戻し、Deliveredなら配達完了処理を行う。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, in AdminUpdateOrderStatusInput) (model.Order, error) {
	newStatus := strings.TrimSpace(in.Status)
	if newStatus == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "Status is required")
	}
	if !model.IsValidOrderStatus(newStatus) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "Invalid status")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		target := model.OrderStatus(newStatus)
		if !o.CanTransitionTo(target) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Cannot change status from %s to %s", o.OrderStatus, target))
		}

		now := time.Now()
		switch target {
		case model.OrderStatusCancelled:
			// 管理者キャンセルも在庫を戻す
			for _, item := range o.Items {
				err := r.Inventory().IncreaseStock(ctx, item.Product, item.Color, item.Size, item.Quantity)
				if errors.Is(err, repo.ErrNotFound) {
					continue
				}
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
			o.SetStatus(target, in.Note, now)
		case model.OrderStatusDelivered:
			o.MarkDelivered(in.Note, now)
		default:
			o.SetStatus(target, in.Note, now)
		}

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
