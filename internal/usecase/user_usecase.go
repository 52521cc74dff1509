package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserUsecase struct {
	users repo.UserRepository
}

func NewUserUsecase(users repo.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

func (u *UserUsecase) GetProfile(ctx context.Context, userID primitive.ObjectID) (model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return model.User{}, NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return *user, nil
}

// 管理者用：全ユーザー一覧
func (u *UserUsecase) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return users, nil
}

// 管理者用：ロール変更。adminのロールは変更不可。
func (u *UserUsecase) UpdateRole(ctx context.Context, targetID primitive.ObjectID, role string) (model.User, error) {
	if !model.IsValidRole(role) {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "Invalid role")
	}

	user, err := u.users.FindByID(ctx, targetID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return model.User{}, NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if user.Role == model.RoleAdmin {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "Cannot change admin role")
	}

	user.Role = model.Role(role)
	if err := u.users.Update(ctx, user); err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return *user, nil
}
