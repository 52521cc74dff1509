package repository

import (
	"app/internal/domain/model"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InventoryRepository interface {
	// 在庫が足りるときだけ1回の条件付き更新で減算する。
	// stock -= qty / totalStock -= qty / soldCount += qty を同時に行う。
	// 対象バリアントが無い・在庫不足のときはfalse。
	DecreaseStockIfAvailable(ctx context.Context, productID primitive.ObjectID, colorName string, size string, qty int) (bool, error)

	// 在庫戻し（キャンセル）。stock += qty / totalStock += qty。
	// バリアントが見つからなければErrNotFound。
	IncreaseStock(ctx context.Context, productID primitive.ObjectID, colorName string, size string, qty int) error

	// 管理者の手動調整履歴
	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
