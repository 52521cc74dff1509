package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// /products のAPI。公開の閲覧系と管理者の更新系をまとめて持つ。
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	// 公開
	e.GET("/products", h.list)
	e.GET("/products/featured", h.featured)
	e.GET("/products/:id", h.detail)

	// 認証ユーザー
	authed := e.Group("", middleware.AuthJWT(cfg))
	authed.POST("/products/:id/reviews", h.addReview)

	// 管理者のみ
	admin := e.Group("", middleware.AuthJWT(cfg), middleware.RoleGuard(string(model.RoleAdmin)))
	admin.POST("/products", h.create)
	admin.PATCH("/products/:id", h.update)
	admin.DELETE("/products/:id", h.delete)
	admin.PATCH("/products/:id/stock", h.updateStock)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid page")
		}
		page = p
	}

	// limit（default 12）
	limit := 12
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}

	var minPrice *float64
	if v := c.QueryParam("minPrice"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return badRequest(c, "invalid minPrice")
		}
		minPrice = &x
	}

	var maxPrice *float64
	if v := c.QueryParam("maxPrice"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return badRequest(c, "invalid maxPrice")
		}
		maxPrice = &x
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Search:   c.QueryParam("search"),
		Brand:    c.QueryParam("brand"),
		Category: c.QueryParam("category"),
		Gender:   c.QueryParam("gender"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Featured: c.QueryParam("featured") == "true",
		SortBy:   c.QueryParam("sortBy"),
		Order:    c.QueryParam("order"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeList(c, len(out.Items), out.Total, out.Page, out.Limit, out.Items)
}

func (h *ProductHandler) featured(c echo.Context) error {
	limit := 8
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}

	items, err := h.uc.ListFeatured(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, items)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req usecase.AdminSaveProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, p)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	var req usecase.AdminSaveProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, p)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, echo.Map{"deleted": true})
}

func (h *ProductHandler) updateStock(c echo.Context) error {
	adminID, _, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized"})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	var req usecase.AdminUpdateStockInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.uc.AdminUpdateStock(c.Request().Context(), adminID, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, p)
}

func (h *ProductHandler) addReview(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized"})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	var req usecase.AddReviewInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.uc.AddReview(c.Request().Context(), userID, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, p)
}
