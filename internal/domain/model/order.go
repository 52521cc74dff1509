package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

// 支払い方法（enum）。ラベルを記録するだけで決済処理はしない。
var PaymentMethods = []string{"Credit Card", "Debit Card", "PayPal", "Cash on Delivery"}

func IsValidPaymentMethod(s string) bool { return contains(PaymentMethods, s) }

func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 許可される遷移。Delivered/Cancelledは終端。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// 注文明細スナップショット。注文時点の商品情報を固定する（後から商品が
// 変わっても注文は変わらない）。
type OrderItem struct {
	Product         primitive.ObjectID `bson:"product" json:"product"`
	ProductName     string             `bson:"productName" json:"productName"`
	ProductImage    string             `bson:"productImage" json:"productImage"`
	Brand           string             `bson:"brand" json:"brand"`
	Color           string             `bson:"color" json:"color"`
	Size            string             `bson:"size" json:"size"`
	PriceAtPurchase float64            `bson:"priceAtPurchase" json:"priceAtPurchase"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
}

// 配送先スナップショット
type ShippingAddress struct {
	Street      string `bson:"street" json:"street"`
	City        string `bson:"city" json:"city"`
	State       string `bson:"state" json:"state"`
	ZipCode     string `bson:"zipCode" json:"zipCode"`
	Country     string `bson:"country" json:"country"`
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`
}

// ステータス履歴。追記のみ。
type StatusHistoryEntry struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
}

type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	UserName  string             `bson:"userName" json:"userName"`

	Items           []OrderItem     `bson:"items" json:"items"`
	ShippingAddress ShippingAddress `bson:"shippingAddress" json:"shippingAddress"`

	// 金額。常に totalAmount = subtotal + tax + shippingCost（2桁丸め）
	Subtotal     float64 `bson:"subtotal" json:"subtotal"`
	Tax          float64 `bson:"tax" json:"tax"`
	ShippingCost float64 `bson:"shippingCost" json:"shippingCost"`
	TotalAmount  float64 `bson:"totalAmount" json:"totalAmount"`

	PaymentMethod string        `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`

	OrderStatus   OrderStatus          `bson:"orderStatus" json:"orderStatus"`
	StatusHistory []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`

	TrackingNumber        string     `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	EstimatedDeliveryDate *time.Time `bson:"estimatedDeliveryDate,omitempty" json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time `bson:"actualDeliveryDate,omitempty" json:"actualDeliveryDate,omitempty"`

	CustomerNotes string `bson:"customerNotes,omitempty" json:"customerNotes,omitempty"`
	AdminNotes    string `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Pending/Processingのみキャンセル可
func (o *Order) CanBeCancelled() bool {
	return o.OrderStatus == OrderStatusPending || o.OrderStatus == OrderStatusProcessing
}

// 遷移テーブルに従って可否を返す
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	for _, s := range orderTransitions[o.OrderStatus] {
		if s == next {
			return true
		}
	}
	return false
}

// ステータスを変更して履歴に追記する
func (o *Order) SetStatus(next OrderStatus, note string, now time.Time) {
	o.OrderStatus = next
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		Status:    next,
		Timestamp: now,
		Note:      note,
	})
	o.UpdatedAt = now
}

// 配達完了。実配達日と支払い完了を記録する。
func (o *Order) MarkDelivered(note string, now time.Time) {
	o.SetStatus(OrderStatusDelivered, note, now)
	o.ActualDeliveryDate = &now
	o.PaymentStatus = PaymentStatusCompleted
}

// 注文内の合計点数
func (o *Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
