package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// ダッシュボード集計。読み取りだけなのでTxは使わない。
type AnalyticsUsecase struct {
	orders   repo.OrderRepository
	products repo.ProductRepository
}

func NewAnalyticsUsecase(orders repo.OrderRepository, products repo.ProductRepository) *AnalyticsUsecase {
	return &AnalyticsUsecase{orders: orders, products: products}
}

type RevenueStatsOutput struct {
	Overall    repo.RevenueStats      `json:"overall"`
	ByCategory []repo.CategoryRevenue `json:"byCategory"`
}

// 期間は任意指定。両方あるときは順序だけ検証する。
func (u *AnalyticsUsecase) RevenueStats(ctx context.Context, from, to *time.Time) (RevenueStatsOutput, error) {
	if from != nil && to != nil && from.After(*to) {
		return RevenueStatsOutput{}, NewHTTPError(http.StatusBadRequest, "startDate must be before endDate")
	}

	overall, byCategory, err := u.orders.RevenueStats(ctx, repo.RevenueFilter{From: from, To: to})
	if err != nil {
		return RevenueStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return RevenueStatsOutput{Overall: overall, ByCategory: byCategory}, nil
}

// 評価順トップ（レビュー5件以上が対象）
func (u *AnalyticsUsecase) TopRated(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	items, err := u.products.ListTopRated(ctx, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 在庫僅少の一覧
func (u *AnalyticsUsecase) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	if threshold <= 0 {
		threshold = 10
	}
	if threshold > 1000 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid threshold")
	}
	items, err := u.products.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
