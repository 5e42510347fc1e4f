package repository

import "context"

// CartStorage is the opaque key-value byte store the cart engine persists
// itself into. Read returns ErrNotFound when the key is absent. The engine
// uses a single fixed key; any session scoping is the adapter's concern.
type CartStorage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// CartStorageFactory produces a CartStorage scoped to one shopper session.
type CartStorageFactory interface {
	ForSession(sessionID string) CartStorage
}
