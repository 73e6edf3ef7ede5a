package clustering

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrModelNotLoaded is returned by Holder.Assign before the first Load.
var ErrModelNotLoaded = errors.New("clustering: no model loaded")

// Loader fetches the current model artifact.
type Loader func(ctx context.Context) (*Model, error)

// Holder owns the model served to requests. The model is replaced only by
// Load/Reload; readers always see a complete model.
type Holder struct {
	loader  Loader
	current atomic.Pointer[Model]
	mu      sync.Mutex // serializes reloads
}

// NewHolder creates a holder that loads models with loader.
func NewHolder(loader Loader) *Holder {
	return &Holder{loader: loader}
}

// NewStaticHolder wraps an already fitted model.
func NewStaticHolder(m *Model) *Holder {
	h := &Holder{loader: func(context.Context) (*Model, error) { return m, nil }}
	h.current.Store(m)
	return h
}

// Load fetches a model and swaps it in. On error the previous model is kept.
func (h *Holder) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, err := h.loader(ctx)
	if err != nil {
		return err
	}
	h.current.Store(m)
	return nil
}

// Reload is Load under the name used by admin operations.
func (h *Holder) Reload(ctx context.Context) error {
	return h.Load(ctx)
}

// Current returns the loaded model, or nil.
func (h *Holder) Current() *Model {
	return h.current.Load()
}

// Assign scores vector with the current model.
func (h *Holder) Assign(vector []float64) (int, error) {
	m := h.current.Load()
	if m == nil {
		return 0, ErrModelNotLoaded
	}
	return m.Assign(vector)
}

// Fingerprint identifies the loaded model, for cache keys.
func (h *Holder) Fingerprint() string {
	m := h.current.Load()
	if m == nil {
		return ""
	}
	if len(m.Meta.Checksum) > 12 {
		return m.Meta.Checksum[:12]
	}
	return m.Meta.Checksum
}
