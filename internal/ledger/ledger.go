package ledger

import (
	"errors"
	"sync"

	"ai-mailroom-be/internal/entity"
)

var (
	// ErrUnknownProduct means the product id is not in the ledger at all.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrInvalidQuantity means a non-positive quantity; a validation failure,
	// not a stock state.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Ledger is the single source of truth for per-product stock. Reserve is the
// only mutating entry point; there is no exposed read-then-write, so the
// classic check/decrement race cannot occur at a call site.
type Ledger struct {
	mu    sync.Mutex
	stock map[string]int
}

func New() *Ledger {
	return &Ledger{
		stock: make(map[string]int),
	}
}

// FromProducts seeds a ledger from catalog records.
func FromProducts(products []*entity.Product) *Ledger {
	l := New()
	for _, p := range products {
		l.stock[p.Id] = p.Stock
	}
	return l
}

// Load replaces the ledger contents with the given stock levels. Used when
// restoring a persisted snapshot on startup.
func (l *Ledger) Load(stock map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock = make(map[string]int, len(stock))
	for id, qty := range stock {
		l.stock[id] = qty
	}
}

// Remove drops a product from the ledger when it leaves the catalog.
// A subsequent Reserve or Peek fails with ErrUnknownProduct.
func (l *Ledger) Remove(productId string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.stock, productId)
}

// Reserve atomically checks and decrements stock. Returns OutcomeCreated when
// the full quantity was available, OutcomeOutOfStock otherwise (stock
// untouched). Stock never goes negative.
func (l *Ledger) Reserve(productId string, quantity int) (entity.OutcomeStatus, error) {
	if quantity <= 0 {
		return "", ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stock[productId]
	if !ok {
		return "", ErrUnknownProduct
	}
	if current < quantity {
		return entity.OutcomeOutOfStock, nil
	}
	l.stock[productId] = current - quantity
	return entity.OutcomeCreated, nil
}

// Peek returns current stock without mutating it.
func (l *Ledger) Peek(productId string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stock[productId]
	if !ok {
		return 0, ErrUnknownProduct
	}
	return current, nil
}

// Snapshot returns a copy of all stock levels, for persistence handoff and
// reporting. The copy is detached; mutating it does not touch the ledger.
func (l *Ledger) Snapshot() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.stock))
	for id, qty := range l.stock {
		out[id] = qty
	}
	return out
}
