package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// admin/sellerは一般ユーザーより広い権限を持つ
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSeller
}

func IsValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// ユーザーの住所（埋め込み）
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type User struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	// 常に小文字で保存する
	Email string `bson:"email" json:"email"`
	// bcryptハッシュ。JSONには出さない。
	PasswordHash string     `bson:"password" json:"-"`
	Role         Role       `bson:"role" json:"role"`
	Address      Address    `bson:"address" json:"address"`
	PhoneNumber  string     `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	IsActive     bool       `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}
