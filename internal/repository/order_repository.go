package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 管理者用の注文一覧
type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
}

// 売上集計の期間指定。nilは無制限。
type RevenueFilter struct {
	From *time.Time
	To   *time.Time
}

// 売上集計の結果（キャンセル除外）
type RevenueStats struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int64   `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// カテゴリ別の売上
type CategoryRevenue struct {
	Category      string  `json:"category"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalQuantity int64   `json:"totalQuantity"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID primitive.ObjectID) (model.Order, error)
	// 新しい順
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error)
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	Create(ctx context.Context, order model.Order) (model.Order, error)
	// ステータス・履歴の変更を丸ごと保存する
	Replace(ctx context.Context, order model.Order) error

	// 集計（aggregation pipeline）
	RevenueStats(ctx context.Context, f RevenueFilter) (RevenueStats, []CategoryRevenue, error)
}
