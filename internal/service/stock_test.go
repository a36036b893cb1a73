package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/repository"
)

func TestStockAdjustConsumesAndRestores(t *testing.T) {
	db := newTestDB(t)
	stock := NewStockService(db, repository.NewProductRepository(db))
	product := seedProduct(t, db, "P1", "10.00", 5)

	require.NoError(t, stock.Adjust(context.Background(), product.ID, -3))
	require.Equal(t, 2, productStock(t, db, product.ID))

	require.NoError(t, stock.Adjust(context.Background(), product.ID, 3))
	require.Equal(t, 5, productStock(t, db, product.ID))
}

func TestStockAdjustFloor(t *testing.T) {
	db := newTestDB(t)
	stock := NewStockService(db, repository.NewProductRepository(db))
	product := seedProduct(t, db, "P1", "10.00", 2)

	err := stock.Adjust(context.Background(), product.ID, -3)
	require.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
	require.Equal(t, 2, productStock(t, db, product.ID))
}

func TestStockAdjustMissingProduct(t *testing.T) {
	db := newTestDB(t)
	stock := NewStockService(db, repository.NewProductRepository(db))

	err := stock.Adjust(context.Background(), 999, -1)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestStockAdjustConcurrentLastUnit(t *testing.T) {
	db := newTestDB(t)
	stock := NewStockService(db, repository.NewProductRepository(db))
	product := seedProduct(t, db, "P1", "10.00", 1)

	const contenders = 8
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = stock.Adjust(context.Background(), product.ID, -1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
		}
	}
	require.Equal(t, 1, succeeded, "exactly one contender may take the last unit")
	require.Equal(t, 0, productStock(t, db, product.ID))
}

func TestCheckAvailable(t *testing.T) {
	db := newTestDB(t)
	stock := NewStockService(db, repository.NewProductRepository(db))
	product := seedProduct(t, db, "P1", "10.00", 3)

	got, err := stock.CheckAvailable(context.Background(), product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, product.ID, got.ID)

	_, err = stock.CheckAvailable(context.Background(), product.ID, 4)
	require.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	_, err = stock.CheckAvailable(context.Background(), 999, 1)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	product.Active = false
	require.NoError(t, db.Save(product).Error)
	_, err = stock.CheckAvailable(context.Background(), product.ID, 1)
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}
