package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Search   string
	Brand    string
	Category string
	Gender   string
	MinPrice *float64
	MaxPrice *float64
	Featured bool
	SortBy   string
	Order    string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Product, error)
	// 評価順（レビュー5件以上）
	ListTopRated(ctx context.Context, limit int) ([]model.Product, error)
	// 在庫僅少（0 < totalStock <= threshold）
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)

	FindByID(ctx context.Context, id primitive.ObjectID) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	// ドキュメント全体を置き換える。呼び出し側はRecomputeTotals済みであること。
	Replace(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
