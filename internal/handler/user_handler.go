package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// /users のAPI（管理者向けと本人プロフィール）
type UserHandler struct {
	uc *usecase.UserUsecase
}

// DI
func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	authed := e.Group("", middleware.AuthJWT(cfg))
	authed.GET("/users/me", h.me)

	admin := e.Group("", middleware.AuthJWT(cfg), middleware.RoleGuard(string(model.RoleAdmin)))
	admin.GET("/users", h.list)
	admin.PATCH("/users/:id/role", h.updateRole)
}

func (h *UserHandler) me(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized"})
	}

	user, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, user)
}

func (h *UserHandler) list(c echo.Context) error {
	users, err := h.uc.ListUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, users)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) updateRole(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.uc.UpdateRole(c.Request().Context(), targetID, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, user)
}
