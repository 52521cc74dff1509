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

func checkoutProduct(id primitive.ObjectID) model.Product {
	p := model.Product{
		ID:       id,
		Name:     "Air Runner",
		Brand:    "Nike",
		Category: "Running",
		Price:    50,
		IsActive: true,
		Colors: []model.ColorVariant{
			{
				Name:    "Black",
				HexCode: "#000000",
				Sizes:   []model.SizeStock{{Size: "9", Stock: 5}},
			},
		},
		MainImage: "https://img.example.com/air-runner.jpg",
	}
	p.RecomputeTotals()
	return p
}

func validAddress() model.ShippingAddress {
	return model.ShippingAddress{
		Street:      "1 Main St",
		City:        "Springfield",
		State:       "IL",
		ZipCode:     "62704",
		PhoneNumber: "555-0100",
	}
}

func newOrderFixtures() (*TxManagerMock, *OrderRepoMock, *ProductRepoMock, *InventoryRepoMock, *UserRepoMock, *usecase.OrderUsecase) {
	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	productsRepo := new(ProductRepoMock)
	invRepo := new(InventoryRepoMock)
	usersRepo := new(UserRepoMock)

	tx.Repos = &TxReposMock{
		orders:    ordersRepo,
		products:  productsRepo,
		inventory: invRepo,
		users:     usersRepo,
	}

	uc := usecase.NewOrderUsecase(tx, ordersRepo)
	return tx, ordersRepo, productsRepo, invRepo, usersRepo, uc
}

// =====================
// PlaceOrder
// =====================

func TestPlaceOrder_Success(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, productsRepo, invRepo, usersRepo, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	product := checkoutProduct(productID)

	tx.On("WithinTx", mock.Anything).Return(nil)
	usersRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID, Name: "Taro", Email: "taro@example.com"}, nil)
	productsRepo.On("FindByID", mock.Anything, productID).Return(product, nil)
	invRepo.On("DecreaseStockIfAvailable", mock.Anything, productID, "Black", "9", 3).Return(true, nil)

	var created model.Order
	ordersRepo.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(model.Order)
		}).
		Return(model.Order{ID: primitive.NewObjectID()}, nil)

	_, err := uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Black", Size: "9", Quantity: 3},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})
	require.NoError(t, err)

	// スナップショットと金額：単価50×3 = 150 → 送料無料、税12、合計162
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Air Runner", created.Items[0].ProductName)
	assert.Equal(t, 50.0, created.Items[0].PriceAtPurchase)
	assert.Equal(t, 150.0, created.Items[0].Subtotal)
	assert.Equal(t, 150.0, created.Subtotal)
	assert.Equal(t, 12.0, created.Tax)
	assert.Equal(t, 0.0, created.ShippingCost)
	assert.Equal(t, 162.0, created.TotalAmount)

	assert.Equal(t, model.OrderStatusPending, created.OrderStatus)
	assert.Equal(t, model.PaymentStatusPending, created.PaymentStatus)
	require.Len(t, created.StatusHistory, 1)
	assert.Equal(t, model.OrderStatusPending, created.StatusHistory[0].Status)
	assert.Equal(t, "Order placed", created.StatusHistory[0].Note)
	require.NotNil(t, created.EstimatedDeliveryDate)

	assert.Equal(t, userID, created.User)
	assert.Equal(t, "taro@example.com", created.UserEmail)
	assert.Equal(t, "USA", created.ShippingAddress.Country)

	ordersRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
}

func TestPlaceOrder_FlatShippingBelowLimit(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, productsRepo, invRepo, usersRepo, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	product := checkoutProduct(productID)
	product.Price = 40

	tx.On("WithinTx", mock.Anything).Return(nil)
	usersRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID, Name: "Taro", Email: "taro@example.com"}, nil)
	productsRepo.On("FindByID", mock.Anything, productID).Return(product, nil)
	invRepo.On("DecreaseStockIfAvailable", mock.Anything, productID, "Black", "9", 1).Return(true, nil)

	var created model.Order
	ordersRepo.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(model.Order)
		}).
		Return(model.Order{}, nil)

	_, err := uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Black", Size: "9", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "PayPal",
	})
	require.NoError(t, err)

	// 小計40：送料10、税3.20、合計53.20
	assert.Equal(t, 40.0, created.Subtotal)
	assert.Equal(t, 3.20, created.Tax)
	assert.Equal(t, 10.0, created.ShippingCost)
	assert.Equal(t, 53.20, created.TotalAmount)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	_, _, _, _, _, uc := newOrderFixtures()

	_, err := uc.PlaceOrder(context.Background(), primitive.NewObjectID(), usecase.PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})
	assertErrContains(t, err, "No order items provided")
}

func TestPlaceOrder_MissingAddressField(t *testing.T) {
	_, _, _, _, _, uc := newOrderFixtures()

	addr := validAddress()
	addr.City = ""

	_, err := uc.PlaceOrder(context.Background(), primitive.NewObjectID(), usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: primitive.NewObjectID().Hex(), Color: "Black", Size: "9", Quantity: 1},
		},
		ShippingAddress: addr,
		PaymentMethod:   "Credit Card",
	})
	assertErrContains(t, err, "City is required")
}

func TestPlaceOrder_InvalidPaymentMethod(t *testing.T) {
	_, _, _, _, _, uc := newOrderFixtures()

	_, err := uc.PlaceOrder(context.Background(), primitive.NewObjectID(), usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: primitive.NewObjectID().Hex(), Color: "Black", Size: "9", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Bitcoin",
	})
	assertErrContains(t, err, "Invalid payment method")
}

func TestPlaceOrder_InsufficientStock_NoOrderCreated(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, productsRepo, invRepo, usersRepo, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	product := checkoutProduct(productID) // 在庫5

	tx.On("WithinTx", mock.Anything).Return(nil)
	usersRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID, Name: "Taro", Email: "taro@example.com"}, nil)
	productsRepo.On("FindByID", mock.Anything, productID).Return(product, nil)

	_, err := uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Black", Size: "9", Quantity: 10},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})

	assertErrContains(t, err, "Insufficient stock for Air Runner (Black, size 9). Only 5 available.")

	// 1周目で弾かれるので在庫も注文も触らない
	invRepo.AssertNotCalled(t, "DecreaseStockIfAvailable",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ordersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_InactiveProductRejected(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, productsRepo, invRepo, usersRepo, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	product := checkoutProduct(productID)
	product.IsActive = false

	tx.On("WithinTx", mock.Anything).Return(nil)
	usersRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID, Name: "Taro", Email: "taro@example.com"}, nil)
	productsRepo.On("FindByID", mock.Anything, productID).Return(product, nil)

	_, err := uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Black", Size: "9", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})

	assertErrContains(t, err, "Product Air Runner is no longer available")

	// 掲載停止の段階で弾くので在庫も注文も触らない
	invRepo.AssertNotCalled(t, "DecreaseStockIfAvailable",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ordersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	ctx := context.Background()

	tx, _, productsRepo, _, usersRepo, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	tx.On("WithinTx", mock.Anything).Return(nil)
	usersRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID}, nil)
	productsRepo.On("FindByID", mock.Anything, productID).
		Return(model.Product{}, repoErrNotFound())

	_, err := uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Black", Size: "9", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})
	assertErrContains(t, err, "not found")
}

func TestPlaceOrder_UnknownColorAndSize(t *testing.T) {
	ctx := context.Background()

	tx, _, productsRepo, _, usersRepo, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	product := checkoutProduct(productID)

	tx.On("WithinTx", mock.Anything).Return(nil)
	usersRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID}, nil)
	productsRepo.On("FindByID", mock.Anything, productID).Return(product, nil)

	_, err := uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Red", Size: "9", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})
	assertErrContains(t, err, "Color Red not available for Air Runner")

	_, err = uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Black", Size: "13", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})
	assertErrContains(t, err, "Size 13 not available for Air Runner in Black")
}

// 並行注文に先を越された場合：検証は通るが条件付き減算が失敗する
func TestPlaceOrder_ConcurrentDecrementFails(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, productsRepo, invRepo, usersRepo, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	product := checkoutProduct(productID)

	tx.On("WithinTx", mock.Anything).Return(nil)
	usersRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID, Name: "Taro", Email: "taro@example.com"}, nil)
	productsRepo.On("FindByID", mock.Anything, productID).Return(product, nil)
	invRepo.On("DecreaseStockIfAvailable", mock.Anything, productID, "Black", "9", 3).Return(false, nil)

	_, err := uc.PlaceOrder(ctx, userID, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{Product: productID.Hex(), Color: "Black", Size: "9", Quantity: 3},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "Credit Card",
	})

	assertErrContains(t, err, "Insufficient stock")
	ordersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// GetOrderDetail / Cancel
// =====================

func TestGetOrderDetail_OwnerAllowed(t *testing.T) {
	_, ordersRepo, _, _, _, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	ordersRepo.On("FindByID", mock.Anything, orderID).
		Return(model.Order{ID: orderID, User: userID}, nil)

	o, err := uc.GetOrderDetail(context.Background(), userID, model.RoleUser, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, o.ID)
}

func TestGetOrderDetail_StrangerForbidden(t *testing.T) {
	_, ordersRepo, _, _, _, uc := newOrderFixtures()

	orderID := primitive.NewObjectID()

	ordersRepo.On("FindByID", mock.Anything, orderID).
		Return(model.Order{ID: orderID, User: primitive.NewObjectID()}, nil)

	_, err := uc.GetOrderDetail(context.Background(), primitive.NewObjectID(), model.RoleUser, orderID)
	assertErrContains(t, err, "Not authorized to view this order")
}

func TestGetOrderDetail_AdminAllowed(t *testing.T) {
	_, ordersRepo, _, _, _, uc := newOrderFixtures()

	orderID := primitive.NewObjectID()

	ordersRepo.On("FindByID", mock.Anything, orderID).
		Return(model.Order{ID: orderID, User: primitive.NewObjectID()}, nil)

	_, err := uc.GetOrderDetail(context.Background(), primitive.NewObjectID(), model.RoleAdmin, orderID)
	assert.NoError(t, err)
}

func TestCancel_RestoresStockAndAppendsHistory(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, _, invRepo, _, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	order := model.Order{
		ID:          orderID,
		User:        userID,
		OrderStatus: model.OrderStatusPending,
		Items: []model.OrderItem{
			{Product: productID, Color: "Black", Size: "9", Quantity: 3},
		},
		StatusHistory: []model.StatusHistoryEntry{
			{Status: model.OrderStatusPending, Note: "Order placed"},
		},
	}

	tx.On("WithinTx", mock.Anything).Return(nil)
	ordersRepo.On("FindByID", mock.Anything, orderID).Return(order, nil)
	invRepo.On("IncreaseStock", mock.Anything, productID, "Black", "9", 3).Return(nil)

	var replaced model.Order
	ordersRepo.On("Replace", mock.Anything, mock.AnythingOfType("model.Order")).
		Run(func(args mock.Arguments) {
			replaced = args.Get(1).(model.Order)
		}).
		Return(nil)

	out, err := uc.Cancel(ctx, userID, orderID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, out.OrderStatus)
	assert.Equal(t, model.OrderStatusCancelled, replaced.OrderStatus)
	require.Len(t, replaced.StatusHistory, 2)
	assert.Equal(t, "Cancelled by user", replaced.StatusHistory[1].Note)

	invRepo.AssertExpectations(t)
}

func TestCancel_ShippedRejected(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, _, invRepo, _, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	tx.On("WithinTx", mock.Anything).Return(nil)
	ordersRepo.On("FindByID", mock.Anything, orderID).
		Return(model.Order{ID: orderID, User: userID, OrderStatus: model.OrderStatusShipped}, nil)

	_, err := uc.Cancel(ctx, userID, orderID)
	assertErrContains(t, err, "Order cannot be cancelled at this stage")

	invRepo.AssertNotCalled(t, "IncreaseStock",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ordersRepo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

// キャンセル済みをもう一度キャンセルしても同じ拒否が返る
func TestCancel_AlreadyCancelledRejectedAgain(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, _, _, _, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	tx.On("WithinTx", mock.Anything).Return(nil)
	ordersRepo.On("FindByID", mock.Anything, orderID).
		Return(model.Order{ID: orderID, User: userID, OrderStatus: model.OrderStatusCancelled}, nil)

	for i := 0; i < 2; i++ {
		_, err := uc.Cancel(ctx, userID, orderID)
		assertErrContains(t, err, "Order cannot be cancelled at this stage")
	}
}

func TestCancel_NotOwnerForbidden(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, _, _, _, uc := newOrderFixtures()

	orderID := primitive.NewObjectID()

	tx.On("WithinTx", mock.Anything).Return(nil)
	ordersRepo.On("FindByID", mock.Anything, orderID).
		Return(model.Order{ID: orderID, User: primitive.NewObjectID(), OrderStatus: model.OrderStatusPending}, nil)

	_, err := uc.Cancel(ctx, primitive.NewObjectID(), orderID)
	assertErrContains(t, err, "Not authorized to cancel this order")
}

// 注文後に商品が消えていても他の明細の在庫は戻す
func TestCancel_SkipsDeletedProducts(t *testing.T) {
	ctx := context.Background()

	tx, ordersRepo, _, invRepo, _, uc := newOrderFixtures()

	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()
	goneID := primitive.NewObjectID()
	aliveID := primitive.NewObjectID()

	order := model.Order{
		ID:          orderID,
		User:        userID,
		OrderStatus: model.OrderStatusPending,
		Items: []model.OrderItem{
			{Product: goneID, Color: "Black", Size: "9", Quantity: 1},
			{Product: aliveID, Color: "White", Size: "10", Quantity: 2},
		},
	}

	tx.On("WithinTx", mock.Anything).Return(nil)
	ordersRepo.On("FindByID", mock.Anything, orderID).Return(order, nil)
	invRepo.On("IncreaseStock", mock.Anything, goneID, "Black", "9", 1).Return(repoErrNotFound())
	invRepo.On("IncreaseStock", mock.Anything, aliveID, "White", "10", 2).Return(nil)
	ordersRepo.On("Replace", mock.Anything, mock.AnythingOfType("model.Order")).Return(nil)

	_, err := uc.Cancel(ctx, userID, orderID)
	require.NoError(t, err)

	invRepo.AssertExpectations(t)
}
