package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const adjustmentCollection = "inventory_adjustments"

type InventoryMongoRepository struct {
	db *mongo.Database
}

func NewInventoryMongoRepository(db *mongo.Database) *InventoryMongoRepository {
	return &InventoryMongoRepository{db: db}
}

// 在庫が足りるときだけ減らす。
// フィルタで「該当色・該当サイズ・stock >= qty」を要求し、更新はarrayFiltersで
// 同じ要素だけに$incを当てる。1回の条件付き更新なので並行注文で負在庫にならない。
func (r *InventoryMongoRepository) DecreaseStockIfAvailable(ctx context.Context, productID primitive.ObjectID, colorName string, size string, qty int) (bool, error) {
	filter := bson.M{
		"_id": productID,
		"colors": bson.M{"$elemMatch": bson.M{
			"name":  colorName,
			"sizes": bson.M{"$elemMatch": bson.M{"size": size, "stock": bson.M{"$gte": qty}}},
		}},
	}
	update := bson.M{
		"$inc": bson.M{
			"colors.$[c].sizes.$[s].stock": -qty,
			"totalStock":                   -qty,
			"soldCount":                    qty,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"c.name": colorName},
			bson.M{"s.size": size, "s.stock": bson.M{"$gte": qty}},
		},
	})

	res, err := r.db.Collection(productCollection).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// 在庫戻し（キャンセル）。soldCountは触らない。
func (r *InventoryMongoRepository) IncreaseStock(ctx context.Context, productID primitive.ObjectID, colorName string, size string, qty int) error {
	filter := bson.M{
		"_id": productID,
		"colors": bson.M{"$elemMatch": bson.M{
			"name":  colorName,
			"sizes": bson.M{"$elemMatch": bson.M{"size": size}},
		}},
	}
	update := bson.M{
		"$inc": bson.M{
			"colors.$[c].sizes.$[s].stock": qty,
			"totalStock":                   qty,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"c.name": colorName},
			bson.M{"s.size": size},
		},
	})

	res, err := r.db.Collection(productCollection).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryMongoRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	adj.ID = primitive.NewObjectID()
	if _, err := r.db.Collection(adjustmentCollection).InsertOne(ctx, adj); err != nil {
		return err
	}
	return nil
}
