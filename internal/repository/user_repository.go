package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID primitive.ObjectID) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ロールの変更・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	// 管理画面用。新しい順。
	List(ctx context.Context) ([]model.User, error)
}
