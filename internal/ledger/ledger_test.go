package ledger

import (
	"sync"
	"testing"

	"ai-mailroom-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserve(t *testing.T) {
	tests := []struct {
		name       string
		stock      int
		quantity   int
		wantStatus entity.OutcomeStatus
		wantStock  int
	}{
		{
			name:       "exact stock",
			stock:      5,
			quantity:   5,
			wantStatus: entity.OutcomeCreated,
			wantStock:  0,
		},
		{
			name:       "partial stock left",
			stock:      5,
			quantity:   3,
			wantStatus: entity.OutcomeCreated,
			wantStock:  2,
		},
		{
			name:       "insufficient stock leaves level untouched",
			stock:      2,
			quantity:   3,
			wantStatus: entity.OutcomeOutOfStock,
			wantStock:  2,
		},
		{
			name:       "zero stock",
			stock:      0,
			quantity:   1,
			wantStatus: entity.OutcomeOutOfStock,
			wantStock:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			l.Load(map[string]int{"SKU-1": tt.stock})

			status, err := l.Reserve("SKU-1", tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)

			left, err := l.Peek("SKU-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, left)
		})
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	l := New()
	l.Load(map[string]int{"SKU-1": 5})

	_, err := l.Reserve("SKU-404", 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestReserveInvalidQuantity(t *testing.T) {
	l := New()
	l.Load(map[string]int{"SKU-1": 5})

	for _, qty := range []int{0, -1, -100} {
		_, err := l.Reserve("SKU-1", qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", qty)
	}

	// Invalid quantity must not touch stock.
	left, err := l.Peek("SKU-1")
	require.NoError(t, err)
	assert.Equal(t, 5, left)
}

func TestPeekUnknownProduct(t *testing.T) {
	l := New()
	_, err := l.Peek("SKU-404")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestSequentialReserveSameProduct(t *testing.T) {
	l := New()
	l.Load(map[string]int{"P1": 2})

	status, err := l.Reserve("P1", 1)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeCreated, status)

	status, err = l.Reserve("P1", 2)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeOutOfStock, status)

	left, err := l.Peek("P1")
	require.NoError(t, err)
	assert.Equal(t, 1, left)
}

func TestRemove(t *testing.T) {
	l := New()
	l.Load(map[string]int{"A": 3, "B": 1})

	l.Remove("A")

	_, err := l.Peek("A")
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = l.Reserve("A", 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	left, err := l.Peek("B")
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	// Removing an absent product is a no-op.
	l.Remove("SKU-404")
}

func TestFromProducts(t *testing.T) {
	l := FromProducts([]*entity.Product{
		{Id: "A", Stock: 3},
		{Id: "B", Stock: 0},
	})

	a, err := l.Peek("A")
	require.NoError(t, err)
	assert.Equal(t, 3, a)

	b, err := l.Peek("B")
	require.NoError(t, err)
	assert.Equal(t, 0, b)
}

func TestSnapshotIsDetached(t *testing.T) {
	l := New()
	l.Load(map[string]int{"A": 3})

	snap := l.Snapshot()
	snap["A"] = 999

	left, err := l.Peek("A")
	require.NoError(t, err)
	assert.Equal(t, 3, left)
}

// TestConcurrentReserve hammers one product from many goroutines. Exactly
// min(initial stock, attempts) units may be granted and stock never goes
// negative.
func TestConcurrentReserve(t *testing.T) {
	const (
		initialStock = 50
		attempts     = 200
	)

	l := New()
	l.Load(map[string]int{"HOT": initialStock})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := l.Reserve("HOT", 1)
			if err != nil {
				t.Error(err)
				return
			}
			if status == entity.OutcomeCreated {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, initialStock, granted)

	left, err := l.Peek("HOT")
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}
