package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdateRole_Success(t *testing.T) {
	usersRepo := new(UserRepoMock)
	uc := usecase.NewUserUsecase(usersRepo)

	targetID := primitive.NewObjectID()
	usersRepo.On("FindByID", mock.Anything, targetID).
		Return(&model.User{ID: targetID, Role: model.RoleUser}, nil)
	usersRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	out, err := uc.UpdateRole(context.Background(), targetID, "seller")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSeller, out.Role)

	usersRepo.AssertExpectations(t)
}

func TestUpdateRole_InvalidRole(t *testing.T) {
	uc := usecase.NewUserUsecase(new(UserRepoMock))

	_, err := uc.UpdateRole(context.Background(), primitive.NewObjectID(), "superadmin")
	assertErrContains(t, err, "Invalid role")
}

// adminのロールは変更できない
func TestUpdateRole_AdminImmutable(t *testing.T) {
	usersRepo := new(UserRepoMock)
	uc := usecase.NewUserUsecase(usersRepo)

	targetID := primitive.NewObjectID()
	usersRepo.On("FindByID", mock.Anything, targetID).
		Return(&model.User{ID: targetID, Role: model.RoleAdmin}, nil)

	_, err := uc.UpdateRole(context.Background(), targetID, "user")
	assertErrContains(t, err, "Cannot change admin role")

	usersRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestListUsers(t *testing.T) {
	usersRepo := new(UserRepoMock)
	uc := usecase.NewUserUsecase(usersRepo)

	usersRepo.On("List", mock.Anything).
		Return([]model.User{{Name: "Taro"}, {Name: "Hanako"}}, nil)

	users, err := uc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
