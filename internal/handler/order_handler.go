package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// /orders のAPI
type OrderHandler struct {
	uc      *usecase.OrderUsecase
	adminUC *usecase.AdminOrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase, adminUC *usecase.AdminOrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, adminUC: adminUC}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	authed := e.Group("", middleware.AuthJWT(cfg))
	authed.POST("/orders", h.place)
	authed.GET("/orders/me", h.listMine)
	authed.GET("/orders/:id", h.detail)
	authed.DELETE("/orders/:id", h.cancel)

	// admin/seller
	elevated := e.Group("", middleware.AuthJWT(cfg),
		middleware.RoleGuard(string(model.RoleAdmin), string(model.RoleSeller)))
	elevated.GET("/orders", h.listAdmin)
	elevated.PATCH("/orders/:id/status", h.updateStatus)
}

func (h *OrderHandler) place(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized"})
	}

	var req usecase.PlaceOrderInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	order, err := h.uc.PlaceOrder(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, order)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized"})
	}

	orders, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, orders)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized"})
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid order id")
	}

	order, err := h.uc.GetOrderDetail(c.Request().Context(), userID, role, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, order)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized"})
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid order id")
	}

	order, err := h.uc.Cancel(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, order)
}

func (h *OrderHandler) listAdmin(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid page")
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}

	out, err := h.adminUC.List(c.Request().Context(), repo.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeList(c, len(out.Orders), out.Total, page, limit, out.Orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid order id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	order, err := h.adminUC.UpdateStatus(c.Request().Context(), orderID, usecase.AdminUpdateOrderStatusInput{
		Status: req.Status,
		Note:   req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, order)
}
