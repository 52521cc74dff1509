package handler

import (
	"errors"

	"app/internal/domain/model"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errNoIdentity = errors.New("no identity in context")

// AuthJWTが詰めた認証情報を取り出す
func currentUser(c echo.Context) (primitive.ObjectID, model.Role, error) {
	id, ok := c.Get(middleware.CtxUserIDKey).(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, "", errNoIdentity
	}
	role, ok := c.Get(middleware.CtxUserRoleKey).(string)
	if !ok || role == "" {
		return primitive.NilObjectID, "", errNoIdentity
	}
	return id, model.Role(role), nil
}
