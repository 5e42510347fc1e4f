package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/platform/logger"
	"github.com/tiendalia/cart-service/internal/repository"
)

const (
	// cartStateKey is the single fixed key the engine persists under. Session
	// scoping, if any, happens inside the CartStorage adapter.
	cartStateKey = "cart_state"

	persistTimeout = time.Second
)

// CartStore owns one shopper's cart. It restores itself from storage at
// construction and persists after every mutation. It is a bookkeeping ledger
// only: it never checks stock, never fetches catalog data, and no public
// operation returns an error. Storage failures are logged and swallowed; the
// in-memory state stays authoritative for the session.
type CartStore struct {
	mu      sync.Mutex
	cart    entity.Cart
	storage repository.CartStorage
	log     logger.Logger
}

// NewCartStore builds a store restored from persisted state. An absent key
// yields an empty cart. Corrupt or non-array payloads also yield an empty
// cart, with a logged warning; corruption is recoverable, never fatal. A
// successful load is not re-persisted.
func NewCartStore(ctx context.Context, storage repository.CartStorage, log logger.Logger) *CartStore {
	s := &CartStore{storage: storage, log: log}

	data, err := storage.Read(ctx, cartStateKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warnf("Failed to read persisted cart, starting empty: %v", err)
		}
		return s
	}

	var lines []entity.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		log.Warnf("Persisted cart state is corrupt, resetting to empty: %v", err)
		return s
	}
	s.cart.Lines = lines
	return s
}

// AddLine appends a new quantity-1 line with a fresh ID and persists.
// Duplicate product/variant pairs intentionally produce separate lines; there
// is no merge key. Stock-ceiling enforcement is the caller's responsibility,
// checked against QuantityOfProduct before calling this.
func (s *CartStore) AddLine(product entity.ProductSnapshot, variant entity.VariantSnapshot, customization *entity.Customization) entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	if variant.Price == nil {
		s.log.Warnf("Adding variant %q of product %d without a price; it will contribute 0 to totals", variant.Name, product.ProductID)
	}

	line := entity.NewCartLine(product, variant, customization)
	s.cart.Append(line)
	s.persist()
	return line
}

// RemoveLine removes the matching line and persists. Unknown IDs are a no-op.
func (s *CartStore) RemoveLine(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(lineID)
	s.persist()
}

// SetQuantity sets the matching line's quantity verbatim and persists.
func (s *CartStore) SetQuantity(lineID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.SetQuantity(lineID, quantity)
	s.persist()
}

// Clear empties the cart and persists the empty state. The checkout flow
// calls this strictly after order persistence has been acknowledged.
func (s *CartStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.persist()
}

func (s *CartStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

func (s *CartStore) QuantityOfProduct(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.QuantityOfProduct(productID)
}

func (s *CartStore) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.IsEmpty()
}

// Lines returns a copy of the cart lines in insertion order. Callers must
// treat the returned lines as read-only and route changes through the store.
func (s *CartStore) Lines() []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]entity.CartLine, len(s.cart.Lines))
	copy(lines, s.cart.Lines)
	return lines
}

// persist writes the current line slice under the fixed key. Write failures
// are logged only; durability loss does not invalidate the in-memory cart.
// Callers must hold s.mu.
func (s *CartStore) persist() {
	lines := s.cart.Lines
	if lines == nil {
		lines = []entity.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.log.Errorf("Failed to serialize cart state: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Write(ctx, cartStateKey, data); err != nil {
		s.log.Warnf("Failed to persist cart state: %v", err)
	}
}
