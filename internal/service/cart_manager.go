package service

import (
	"context"
	"sync"

	"github.com/tiendalia/cart-service/internal/platform/logger"
	"github.com/tiendalia/cart-service/internal/repository"
)

// CartManager hands out one CartStore per shopper session, constructing each
// lazily from its persisted state. It is the single composition point for
// stores; nothing else creates them, so tests can build fresh managers with
// in-memory storage.
type CartManager struct {
	mu      sync.Mutex
	stores  map[string]*CartStore
	factory repository.CartStorageFactory
	log     logger.Logger
}

func NewCartManager(factory repository.CartStorageFactory, log logger.Logger) *CartManager {
	return &CartManager{
		stores:  make(map[string]*CartStore),
		factory: factory,
		log:     log,
	}
}

// Store returns the session's cart store, restoring it from storage on first
// access.
func (m *CartManager) Store(ctx context.Context, sessionID string) *CartStore {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[sessionID]; ok {
		return store
	}
	store := NewCartStore(ctx, m.factory.ForSession(sessionID), m.log.With("session_id", sessionID))
	m.stores[sessionID] = store
	return store
}
