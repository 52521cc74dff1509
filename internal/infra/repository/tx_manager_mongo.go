package repository

import (
	"context"

	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

type txReposMongo struct {
	orders    repo.OrderRepository
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	users     repo.UserRepository
}

func (r *txReposMongo) Orders() repo.OrderRepository        { return r.orders }
func (r *txReposMongo) Products() repo.ProductRepository    { return r.products }
func (r *txReposMongo) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposMongo) Users() repo.UserRepository          { return r.users }

type TxManagerMongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewTxManagerMongo(client *mongo.Client, db *mongo.Database) *TxManagerMongo {
	return &TxManagerMongo{client: client, db: db}
}

// fnをひとつのセッショントランザクションで実行する。
// fnがerrorを返せばロールバック。sessCtxをrepo呼び出しに使うこと。
func (tm *TxManagerMongo) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.TxRepos) error) error {
	sess, err := tm.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	r := &txReposMongo{
		orders:    NewOrderMongoRepository(tm.db),
		products:  NewProductMongoRepository(tm.db),
		inventory: NewInventoryMongoRepository(tm.db),
		users:     NewUserMongoRepository(tm.db),
	}

	_, err = sess.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, r)
	})
	return err
}
