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

// レビューID等を作る約束
type IDGenerator interface {
	NewID() string
}

type ProductUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	users    repo.UserRepository
	idGen    IDGenerator
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	users repo.UserRepository,
	idGen IDGenerator,
) *ProductUsecase {
	return &ProductUsecase{
		tx:       tx,
		products: products,
		users:    users,
		idGen:    idGen,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
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

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Search) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "search too long")
	}
	if in.Brand != "" && !model.IsValidBrand(in.Brand) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}
	if in.Category != "" && !model.IsValidCategory(in.Category) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if in.Gender != "" && !model.IsValidGender(in.Gender) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid gender")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "maxPrice must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be <= maxPrice")
	}
	switch in.SortBy {
	case "", "price", "createdAt", "averageRating", "soldCount", "name":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sortBy")
	}
	switch in.Order {
	case "", "asc", "desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order")
	}

	items, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Search:   strings.TrimSpace(in.Search),
		Brand:    in.Brand,
		Category: in.Category,
		Gender:   in.Gender,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Featured: in.Featured,
		SortBy:   in.SortBy,
		Order:    in.Order,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	if limit < 1 || limit > 50 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	items, err := u.products.ListFeatured(ctx, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID primitive.ObjectID) (model.Product, error) {
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 作成・更新で共通の入力
type AdminSaveProductInput struct {
	Name               string               `json:"name"`
	Description        string               `json:"description"`
	Brand              string               `json:"brand"`
	Category           string               `json:"category"`
	Price              float64              `json:"price"`
	DiscountPercentage float64              `json:"discountPercentage"`
	Colors             []model.ColorVariant `json:"colors"`
	MainImage          string               `json:"mainImage"`
	AdditionalImages   []string             `json:"additionalImages"`
	Gender             string               `json:"gender"`
	Tags               []string             `json:"tags"`
	IsFeatured         bool                 `json:"isFeatured"`
	IsActive           bool                 `json:"isActive"`
}

// 商品入力のバリデーション。最初の違反を400メッセージとして返す。
func validateProductInput(in AdminSaveProductInput) error {
	name := strings.TrimSpace(in.Name)
	if len(name) < 3 || len(name) > 100 {
		return NewHTTPError(http.StatusBadRequest, "Name must be 3 to 100 characters")
	}
	desc := strings.TrimSpace(in.Description)
	if len(desc) < 10 || len(desc) > 2000 {
		return NewHTTPError(http.StatusBadRequest, "Description must be 10 to 2000 characters")
	}
	if !model.IsValidBrand(in.Brand) {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a supported brand", in.Brand))
	}
	if !model.IsValidCategory(in.Category) {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a valid category", in.Category))
	}
	if !model.IsValidGender(in.Gender) {
		return NewHTTPError(http.StatusBadRequest, "Invalid gender")
	}
	if in.Price < 0 || in.Price > 10000 {
		return NewHTTPError(http.StatusBadRequest, "Price must be between 0 and 10000")
	}
	if in.DiscountPercentage < 0 || in.DiscountPercentage > 100 {
		return NewHTTPError(http.StatusBadRequest, "Discount percentage must be between 0 and 100")
	}
	if strings.TrimSpace(in.MainImage) == "" {
		return NewHTTPError(http.StatusBadRequest, "Main image URL is required")
	}
	if len(in.Colors) == 0 {
		return NewHTTPError(http.StatusBadRequest, "At least one color option is required")
	}

	seen := map[string]bool{}
	for _, c := range in.Colors {
		if strings.TrimSpace(c.Name) == "" {
			return NewHTTPError(http.StatusBadRequest, "Color name is required")
		}
		if seen[c.Name] {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Duplicate color %s", c.Name))
		}
		seen[c.Name] = true

		if !model.HexCodePattern.MatchString(c.HexCode) {
			return NewHTTPError(http.StatusBadRequest, "Please provide valid hex color code")
		}
		if len(c.Sizes) == 0 {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Color %s must have at least one size", c.Name))
		}
		for _, s := range c.Sizes {
			if !model.IsValidSize(s.Size) {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a valid size", s.Size))
			}
			if s.Stock < 0 {
				return NewHTTPError(http.StatusBadRequest, "Stock cannot be negative")
			}
		}
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, in AdminSaveProductInput) (model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		Name:               strings.TrimSpace(in.Name),
		Description:        strings.TrimSpace(in.Description),
		Brand:              in.Brand,
		Category:           in.Category,
		Price:              in.Price,
		DiscountPercentage: in.DiscountPercentage,
		Colors:             in.Colors,
		MainImage:          in.MainImage,
		AdditionalImages:   in.AdditionalImages,
		Gender:             in.Gender,
		Reviews:            []model.Review{},
		Tags:               in.Tags,
		IsFeatured:         in.IsFeatured,
		IsActive:           in.IsActive,
	}
	// 保存前の再計算は呼び出し側の約束
	p.RecomputeTotals()

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, productID primitive.ObjectID, in AdminSaveProductInput) (model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return model.Product{}, err
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Brand = in.Brand
	p.Category = in.Category
	p.Price = in.Price
	p.DiscountPercentage = in.DiscountPercentage
	p.Colors = in.Colors
	p.MainImage = in.MainImage
	p.AdditionalImages = in.AdditionalImages
	p.Gender = in.Gender
	p.Tags = in.Tags
	p.IsFeatured = in.IsFeatured
	p.IsActive = in.IsActive
	p.RecomputeTotals()

	if err := u.products.Replace(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 物理削除。注文側はスナップショットを持つので参照は壊れない。
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, productID primitive.ObjectID) error {
	err := u.products.Delete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// PATCH /products/:id/stock の入力。
// Stock：絶対値で設定 / Quantity：符号付き増減。どちらか一方だけ。
type AdminUpdateStockInput struct {
	ColorName string `json:"colorName"`
	Size      string `json:"size"`
	Stock     *int   `json:"stock"`
	Quantity  *int   `json:"quantity"`
}

// 在庫変更と調整履歴はひとつのトランザクションで保存する。
// 片方だけ残って履歴と実在庫が食い違う、という壊れ方をしないように。
func (u *ProductUsecase) AdminUpdateStock(ctx context.Context, adminUserID primitive.ObjectID, productID primitive.ObjectID, in AdminUpdateStockInput) (model.Product, error) {
	var out model.Product

	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		variant, err := p.FindVariant(in.ColorName, in.Size)
		if errors.Is(err, model.ErrColorNotFound) {
			return NewHTTPError(http.StatusNotFound, "Color not found")
		}
		if errors.Is(err, model.ErrSizeNotFound) {
			return NewHTTPError(http.StatusNotFound, "Size not found")
		}

		var delta int
		switch {
		case in.Stock != nil:
			if *in.Stock < 0 {
				return NewHTTPError(http.StatusBadRequest, "Stock must be a non-negative number")
			}
			delta = *in.Stock - variant.Stock
			variant.Stock = *in.Stock
		case in.Quantity != nil:
			next := variant.Stock + *in.Quantity
			if next < 0 {
				return NewHTTPError(http.StatusBadRequest, "Stock cannot be negative")
			}
			delta = *in.Quantity
			variant.Stock = next
		default:
			return NewHTTPError(http.StatusBadRequest, "Provide either stock (set) or quantity (increment)")
		}

		p.RecomputeTotals()
		if err := r.Products().Replace(ctx, p); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 手動調整の履歴を残す
		adj := model.InventoryAdjustment{
			Product:   p.ID,
			AdminUser: adminUserID,
			ColorName: in.ColorName,
			Size:      in.Size,
			Delta:     delta,
			CreatedAt: time.Now(),
		}
		if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = p
		return nil
	})

	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

type AddReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// レビュー追加。ユーザーにつき1商品1件まで。
func (u *ProductUsecase) AddReview(ctx context.Context, userID primitive.ObjectID, productID primitive.ObjectID, in AddReviewInput) (model.Product, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "Rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "Please provide rating and comment")
	}
	if len(comment) > 500 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "Review cannot exceed 500 characters")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	for _, r := range p.Reviews {
		if r.User == userID {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "You have already reviewed this product")
		}
	}

	// 表示名は非正規化コピー
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p.Reviews = append(p.Reviews, model.Review{
		ID:        u.idGen.NewID(),
		User:      userID,
		UserName:  user.Name,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
	p.RecomputeTotals()

	if err := u.products.Replace(ctx, p); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}
