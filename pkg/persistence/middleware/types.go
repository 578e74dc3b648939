package middleware

import "github.com/aretw0/flowbuilder/pkg/ports"

// Middleware allows wrapping a KVStore to add behavior.
type Middleware func(ports.KVStore) ports.KVStore

// Chain wraps base with mws. The first middleware is the outermost, so it sees
// the plain value on Save first.
func Chain(base ports.KVStore, mws ...Middleware) ports.KVStore {
	store := base
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
