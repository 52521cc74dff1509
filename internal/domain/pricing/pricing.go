package pricing

import (
	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 金額計算はすべてdecimalで行い、丸めは2桁のround half away from zero。
// floatの誤差を積まないため、途中計算もdecimalのまま持ち回る。

var (
	taxRate           = decimal.NewFromFloat(0.08) // 税率8%
	freeShippingLimit = decimal.NewFromInt(100)    // この額以上で送料無料
	flatShippingCost  = decimal.NewFromInt(10)     // 固定送料
)

// 割引後価格。割引がなければ定価のまま。
func FinalPrice(p *model.Product) decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	if p.DiscountPercentage <= 0 {
		return price
	}
	discount := decimal.NewFromFloat(p.DiscountPercentage).Div(decimal.NewFromInt(100))
	return price.Mul(decimal.NewFromInt(1).Sub(discount))
}

// 明細小計 = 購入時単価 × 数量
func LineSubtotal(priceAtPurchase decimal.Decimal, quantity int) decimal.Decimal {
	return priceAtPurchase.Mul(decimal.NewFromInt(int64(quantity)))
}

// 注文小計 = 明細小計の合計
func OrderSubtotal(lines []decimal.Decimal) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line)
	}
	return subtotal
}

// 送料。小計100以上で無料、未満は一律10。
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingLimit) {
		return decimal.Zero
	}
	return flatShippingCost
}

// 税額 = 小計 × 8%（2桁丸め）
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(2)
}

// 合計 = 小計 + 税 + 送料（2桁丸め）
func Total(subtotal, tax, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Add(shipping).Round(2)
}

// 保存・レスポンス用のfloat64（2桁丸め）
func ToAmount(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
