package model

import (
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 取り扱いブランド（enum）
var Brands = []string{"Nike", "Adidas", "Puma", "Reebok", "New Balance", "Converse", "Vans", "Under Armour"}

// カテゴリ（enum）
var Categories = []string{"Running", "Basketball", "Casual", "Training", "Soccer", "Tennis", "Walking"}

// 対象（enum）
var Genders = []string{"Men", "Women", "Unisex", "Kids"}

// サイズラベル（固定セット）
var SizeLabels = []string{"5", "6", "7", "8", "9", "10", "11", "12", "13", "14"}

// #RRGGBB形式
var HexCodePattern = regexp.MustCompile(`^#[A-Fa-f0-9]{6}$`)

func IsValidBrand(s string) bool    { return contains(Brands, s) }
func IsValidCategory(s string) bool { return contains(Categories, s) }
func IsValidGender(s string) bool   { return contains(Genders, s) }
func IsValidSize(s string) bool     { return contains(SizeLabels, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// サイズごとの在庫。予約（注文）の最小単位。
type SizeStock struct {
	Size  string `bson:"size" json:"size"`
	Stock int    `bson:"stock" json:"stock"`
}

// カラーバリエーション。商品に最低1つ必要。
type ColorVariant struct {
	Name     string      `bson:"name" json:"name"`
	HexCode  string      `bson:"hexCode" json:"hexCode"`
	ImageURL string      `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Sizes    []SizeStock `bson:"sizes" json:"sizes"`
}

// レビュー。userNameは表示用の非正規化コピー。
type Review struct {
	ID        string             `bson:"id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	UserName  string             `bson:"userName" json:"userName"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Description        string             `bson:"description" json:"description"`
	Brand              string             `bson:"brand" json:"brand"`
	Category           string             `bson:"category" json:"category"`
	Price              float64            `bson:"price" json:"price"`
	DiscountPercentage float64            `bson:"discountPercentage" json:"discountPercentage"`
	Colors             []ColorVariant     `bson:"colors" json:"colors"`
	MainImage          string             `bson:"mainImage" json:"mainImage"`
	AdditionalImages   []string           `bson:"additionalImages" json:"additionalImages"`
	Gender             string             `bson:"gender" json:"gender"`
	Reviews            []Review           `bson:"reviews" json:"reviews"`

	// 集計フィールド。保存直前に必ずRecomputeTotalsで再計算する。
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
	TotalReviews  int     `bson:"totalReviews" json:"totalReviews"`
	TotalStock    int     `bson:"totalStock" json:"totalStock"`

	SoldCount  int       `bson:"soldCount" json:"soldCount"`
	IsFeatured bool      `bson:"isFeatured" json:"isFeatured"`
	IsActive   bool      `bson:"isActive" json:"isActive"`
	Tags       []string  `bson:"tags" json:"tags"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// 色名とサイズの完全一致でバリアントを探す。
func (p *Product) FindVariant(colorName string, size string) (*SizeStock, error) {
	for ci := range p.Colors {
		if p.Colors[ci].Name != colorName {
			continue
		}
		for si := range p.Colors[ci].Sizes {
			if p.Colors[ci].Sizes[si].Size == size {
				return &p.Colors[ci].Sizes[si], nil
			}
		}
		return nil, ErrSizeNotFound
	}
	return nil, ErrColorNotFound
}

// 在庫減算。足りなければErrInsufficientStock。soldCountも同数だけ増やす。
func (p *Product) DecreaseStock(colorName string, size string, qty int) error {
	v, err := p.FindVariant(colorName, size)
	if err != nil {
		return err
	}
	if v.Stock < qty {
		return ErrInsufficientStock
	}
	v.Stock -= qty
	p.SoldCount += qty
	p.RecomputeTotals()
	return nil
}

// 在庫戻し（キャンセル）。上限なし。soldCountは触らない。
func (p *Product) IncreaseStock(colorName string, size string, qty int) error {
	v, err := p.FindVariant(colorName, size)
	if err != nil {
		return err
	}
	v.Stock += qty
	p.RecomputeTotals()
	return nil
}

// totalStockとレビュー集計を埋め込み配列から再計算する。保存前に必ず呼ぶ。
func (p *Product) RecomputeTotals() {
	total := 0
	for _, c := range p.Colors {
		for _, s := range c.Sizes {
			total += s.Stock
		}
	}
	p.TotalStock = total

	if len(p.Reviews) == 0 {
		p.AverageRating = 0
		p.TotalReviews = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	// 平均は小数1桁
	p.AverageRating = math.Round(float64(sum)/float64(len(p.Reviews))*10) / 10
	p.TotalReviews = len(p.Reviews)
}

func (p *Product) InStock() bool {
	return p.TotalStock > 0
}
