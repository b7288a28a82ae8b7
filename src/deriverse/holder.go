// src/deriverse/holder.go
package deriverse

import (
	"sync"
)

// Holder hands out the process-wide engine handle. The factory runs at most
// once, even under concurrent acquisition triggers, and the result — success
// or failure — is reused for the lifetime of the process. There is no
// invalidation path: changing the RPC endpoint requires a restart.
type Holder struct {
	once    sync.Once
	factory func() (Engine, error)
	engine  Engine
	err     error
}

// NewHolder wraps an engine factory. Tests inject a factory returning a fake.
func NewHolder(factory func() (Engine, error)) *Holder {
	return &Holder{factory: factory}
}

// Engine returns the cached handle, creating it on first use.
func (h *Holder) Engine() (Engine, error) {
	h.once.Do(func() {
		h.engine, h.err = h.factory()
	})
	return h.engine, h.err
}
