package service

import (
	"context"
	"errors"
	"testing"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/ledger"
	"ai-mailroom-be/internal/repository/contract"
	"ai-mailroom-be/internal/repository/specification"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/pkg/catalog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----- stubs -----

type catalogProductRepo struct {
	contract.ProductRepository
	products  map[string]*entity.Product
	listSpecs []specification.Specification
	deleted   []string
}

func (r *catalogProductRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	for _, s := range specs {
		if byID, ok := s.(specification.ByID); ok {
			return r.products[byID.ID], nil
		}
	}
	return nil, nil
}

func (r *catalogProductRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	r.listSpecs = specs
	out := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *catalogProductRepo) Delete(ctx context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.products, id)
	return nil
}

type catalogEmbeddingRepo struct {
	contract.ProductEmbeddingRepository
	deleted   []string
	deleteErr error
}

func (r *catalogEmbeddingRepo) DeleteByProductId(ctx context.Context, productId string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, productId)
	return nil
}

type catalogUnitOfWork struct {
	unitofwork.UnitOfWork
	products   *catalogProductRepo
	embeddings *catalogEmbeddingRepo
	begins     int
	commits    int
	rollbacks  int
}

func (u *catalogUnitOfWork) Begin(ctx context.Context) error { u.begins++; return nil }
func (u *catalogUnitOfWork) Commit() error                   { u.commits++; return nil }
func (u *catalogUnitOfWork) Rollback() error                 { u.rollbacks++; return nil }

func (u *catalogUnitOfWork) ProductRepository() contract.ProductRepository { return u.products }
func (u *catalogUnitOfWork) ProductEmbeddingRepository() contract.ProductEmbeddingRepository {
	return u.embeddings
}

type catalogFactory struct {
	uow *catalogUnitOfWork
}

func (f *catalogFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// ----- fixture -----

func newCatalogFixture(products map[string]*entity.Product) (ICatalogService, *catalogUnitOfWork, *ledger.Ledger, *catalog.Store) {
	uow := &catalogUnitOfWork{
		products:   &catalogProductRepo{products: products},
		embeddings: &catalogEmbeddingRepo{},
	}

	stockLedger := ledger.New()
	stock := make(map[string]int, len(products))
	entries := make([]catalog.Entry, 0, len(products))
	for id, p := range products {
		stock[id] = p.Stock
		entries = append(entries, catalog.Entry{
			ProductId: id,
			Vector:    []float32{1},
			Snippet:   p.Name,
		})
	}
	stockLedger.Load(stock)

	store := catalog.NewStore()
	store.Publish(catalog.NewIndex(entries, nil))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	svc := NewCatalogService(&catalogFactory{uow: uow}, nil, store, stockLedger, nil, pubSub, "EMBED_PRODUCT", nil, newTestLogger())

	return svc, uow, stockLedger, store
}

// ----- tests -----

func TestDeleteProductRemovesEverywhere(t *testing.T) {
	svc, uow, stockLedger, store := newCatalogFixture(map[string]*entity.Product{
		"P1": {Id: "P1", Name: "Trail Boots", Stock: 4},
		"P2": {Id: "P2", Name: "Rain Jacket", Stock: 2},
	})

	err := svc.DeleteProduct(context.Background(), "P1")
	require.NoError(t, err)

	// Row and embedding go in one committed transaction.
	assert.Equal(t, 1, uow.begins)
	assert.Equal(t, 1, uow.commits)
	assert.Equal(t, 0, uow.rollbacks)
	assert.Equal(t, []string{"P1"}, uow.products.deleted)
	assert.Equal(t, []string{"P1"}, uow.embeddings.deleted)

	// The ledger entry is gone; the neighbour is untouched.
	_, err = stockLedger.Peek("P1")
	assert.ErrorIs(t, err, ledger.ErrUnknownProduct)
	left, err := stockLedger.Peek("P2")
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	// The serving snapshot no longer carries the product.
	ix := store.Current()
	assert.Equal(t, 1, ix.Len())
	for _, e := range ix.Entries() {
		assert.NotEqual(t, "P1", e.ProductId)
	}
}

func TestDeleteProductUnknown(t *testing.T) {
	svc, uow, _, _ := newCatalogFixture(map[string]*entity.Product{
		"P1": {Id: "P1", Name: "Boots", Stock: 1},
	})

	err := svc.DeleteProduct(context.Background(), "GHOST")
	assert.ErrorIs(t, err, ledger.ErrUnknownProduct)
	assert.Equal(t, 0, uow.begins)
}

func TestDeleteProductRollsBackOnEmbeddingFailure(t *testing.T) {
	svc, uow, stockLedger, _ := newCatalogFixture(map[string]*entity.Product{
		"P1": {Id: "P1", Name: "Boots", Stock: 4},
	})
	uow.embeddings.deleteErr = errors.New("connection reset")

	err := svc.DeleteProduct(context.Background(), "P1")
	require.Error(t, err)
	assert.Equal(t, 1, uow.rollbacks)
	assert.Equal(t, 0, uow.commits)

	// Nothing outside the transaction may change on failure.
	left, err := stockLedger.Peek("P1")
	require.NoError(t, err)
	assert.Equal(t, 4, left)
}

func TestListProductsAppliesSpecifications(t *testing.T) {
	svc, uow, _, _ := newCatalogFixture(map[string]*entity.Product{
		"P1": {Id: "P1", Name: "Boots", Category: "footwear", Stock: 1},
	})

	_, err := svc.ListProducts(context.Background(), "footwear", 10, 5)
	require.NoError(t, err)

	require.Len(t, uow.products.listSpecs, 3)
	assert.Equal(t, specification.ByCategory{Category: "footwear"}, uow.products.listSpecs[0])
	assert.Equal(t, specification.OrderBy{Field: "id"}, uow.products.listSpecs[1])
	assert.Equal(t, specification.Pagination{Limit: 10, Offset: 5}, uow.products.listSpecs[2])
}

func TestListProductsClampsLimit(t *testing.T) {
	svc, uow, _, _ := newCatalogFixture(map[string]*entity.Product{
		"P1": {Id: "P1", Name: "Boots", Stock: 1},
	})

	for _, limit := range []int{0, -1, 500} {
		_, err := svc.ListProducts(context.Background(), "", limit, 0)
		require.NoError(t, err)

		require.Len(t, uow.products.listSpecs, 2)
		assert.Equal(t, specification.Pagination{Limit: 50, Offset: 0}, uow.products.listSpecs[1], "limit %d", limit)
	}
}
