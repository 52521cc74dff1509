package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollection = "products"

type ProductMongoRepository struct {
	db *mongo.Database
}

func NewProductMongoRepository(db *mongo.Database) *ProductMongoRepository {
	return &ProductMongoRepository{db: db}
}

func (r *ProductMongoRepository) col() *mongo.Collection {
	return r.db.Collection(productCollection)
}

// ソート対象はホワイトリストで許可する
var allowedSortFields = map[string]string{
	"price":         "price",
	"createdAt":     "createdAt",
	"averageRating": "averageRating",
	"soldCount":     "soldCount",
	"name":          "name",
}

func (r *ProductMongoRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	filter := bson.M{"isActive": true}

	// 検索語は名前・ブランド・タグの部分一致
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"brand": re},
			bson.M{"tags": re},
		}
	}
	if q.Brand != "" {
		filter["brand"] = q.Brand
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Gender != "" {
		filter["gender"] = q.Gender
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if q.Featured {
		filter["isFeatured"] = true
	}

	// デフォルトは新着順
	sort := bson.D{{Key: "createdAt", Value: -1}}
	if field, ok := allowedSortFields[q.SortBy]; ok {
		dir := 1
		if q.Order == "desc" {
			dir = -1
		}
		sort = bson.D{{Key: field, Value: dir}}
	}

	total, err := r.col().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((q.Page - 1) * q.Limit)
	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(int64(q.Limit))
	cur, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]model.Product, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProductMongoRepository) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	filter := bson.M{"isActive": true, "isFeatured": true}
	opts := options.Find().
		SetSort(bson.D{{Key: "averageRating", Value: -1}}).
		SetLimit(int64(limit))
	return r.findAll(ctx, filter, opts)
}

func (r *ProductMongoRepository) ListTopRated(ctx context.Context, limit int) ([]model.Product, error) {
	filter := bson.M{"isActive": true, "totalReviews": bson.M{"$gte": 5}}
	opts := options.Find().
		SetSort(bson.D{{Key: "averageRating", Value: -1}, {Key: "totalReviews", Value: -1}}).
		SetLimit(int64(limit))
	return r.findAll(ctx, filter, opts)
}

func (r *ProductMongoRepository) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	filter := bson.M{"isActive": true, "totalStock": bson.M{"$lte": threshold, "$gt": 0}}
	opts := options.Find().SetSort(bson.D{{Key: "totalStock", Value: 1}})
	return r.findAll(ctx, filter, opts)
}

func (r *ProductMongoRepository) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Product, error) {
	cur, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.Product, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductMongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (model.Product, error) {
	var p model.Product
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductMongoRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.col().InsertOne(ctx, p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductMongoRepository) Replace(ctx context.Context, p model.Product) error {
	p.UpdatedAt = time.Now()

	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
