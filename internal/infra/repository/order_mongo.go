package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const orderCollection = "orders"

type OrderMongoRepository struct {
	db *mongo.Database
}

func NewOrderMongoRepository(db *mongo.Database) *OrderMongoRepository {
	return &OrderMongoRepository{db: db}
}

func (r *OrderMongoRepository) col() *mongo.Collection {
	return r.db.Collection(orderCollection)
}

func (r *OrderMongoRepository) FindByID(ctx context.Context, orderID primitive.ObjectID) (model.Order, error) {
	var o model.Order
	err := r.col().FindOne(ctx, bson.M{"_id": orderID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderMongoRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col().Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orders := make([]model.Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderMongoRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["orderStatus"] = f.Status
	}

	total, err := r.col().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((f.Page - 1) * f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(f.Limit))
	cur, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	orders := make([]model.Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderMongoRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	now := time.Now()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.col().InsertOne(ctx, order); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderMongoRepository) Replace(ctx context.Context, order model.Order) error {
	order.UpdatedAt = time.Now()

	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 売上集計。キャンセルは除外。期間指定があればcreatedAtで絞る。
// 全体はtotalAmountの合計、カテゴリ別は明細を$unwindして商品を$lookupで引く。
func (r *OrderMongoRepository) RevenueStats(ctx context.Context, f repo.RevenueFilter) (repo.RevenueStats, []repo.CategoryRevenue, error) {
	match := bson.M{"orderStatus": bson.M{"$ne": string(model.OrderStatusCancelled)}}
	if f.From != nil || f.To != nil {
		createdAt := bson.M{}
		if f.From != nil {
			createdAt["$gte"] = *f.From
		}
		if f.To != nil {
			createdAt["$lte"] = *f.To
		}
		match["createdAt"] = createdAt
	}

	overallPipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"totalRevenue":      bson.M{"$sum": "$totalAmount"},
			"totalOrders":       bson.M{"$sum": 1},
			"averageOrderValue": bson.M{"$avg": "$totalAmount"},
		}}},
	}

	var overall repo.RevenueStats
	cur, err := r.col().Aggregate(ctx, overallPipeline)
	if err != nil {
		return repo.RevenueStats{}, nil, err
	}
	var rows []struct {
		TotalRevenue      float64 `bson:"totalRevenue"`
		TotalOrders       int64   `bson:"totalOrders"`
		AverageOrderValue float64 `bson:"averageOrderValue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return repo.RevenueStats{}, nil, err
	}
	if len(rows) > 0 {
		overall = repo.RevenueStats{
			TotalRevenue:      round2(rows[0].TotalRevenue),
			TotalOrders:       rows[0].TotalOrders,
			AverageOrderValue: round2(rows[0].AverageOrderValue),
		}
	}

	byCategoryPipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         productCollection,
			"localField":   "items.product",
			"foreignField": "_id",
			"as":           "productDetails",
		}}},
		{{Key: "$unwind", Value: "$productDetails"}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$productDetails.category",
			"totalRevenue":  bson.M{"$sum": "$items.subtotal"},
			"totalOrders":   bson.M{"$sum": 1},
			"totalQuantity": bson.M{"$sum": "$items.quantity"},
		}}},
		{{Key: "$sort", Value: bson.M{"totalRevenue": -1}}},
	}

	cur, err = r.col().Aggregate(ctx, byCategoryPipeline)
	if err != nil {
		return repo.RevenueStats{}, nil, err
	}
	var catRows []struct {
		Category      string  `bson:"_id"`
		TotalRevenue  float64 `bson:"totalRevenue"`
		TotalOrders   int64   `bson:"totalOrders"`
		TotalQuantity int64   `bson:"totalQuantity"`
	}
	if err := cur.All(ctx, &catRows); err != nil {
		return repo.RevenueStats{}, nil, err
	}

	byCategory := make([]repo.CategoryRevenue, 0, len(catRows))
	for _, row := range catRows {
		byCategory = append(byCategory, repo.CategoryRevenue{
			Category:      row.Category,
			TotalRevenue:  round2(row.TotalRevenue),
			TotalOrders:   row.TotalOrders,
			TotalQuantity: row.TotalQuantity,
		})
	}
	return overall, byCategory, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
