package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 在庫調整の履歴（管理者の手動変更のみ。注文による増減は含まない）

type InventoryAdjustment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Product   primitive.ObjectID `bson:"product" json:"product"`
	AdminUser primitive.ObjectID `bson:"adminUser" json:"adminUser"`
	ColorName string             `bson:"colorName" json:"colorName"`
	Size      string             `bson:"size" json:"size"`
	Delta     int                `bson:"delta" json:"delta"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
