package characteristics

import (
	"sync"

	"golact/domain/model"
	"golact/internal/symbolic"
)

// Derivation is the outcome of symbolic derivation for one
// (model, characteristic) pair. Unavailability is an expected outcome for
// several models, not an error: Available is false and evaluation falls
// back to the numeric path.
type Derivation struct {
	Expr      symbolic.Expr
	Params    []string
	Eval      symbolic.Evaluator
	Available bool
}

type cacheKey struct {
	model          model.Name
	characteristic Characteristic
}

// Cache stores derived expressions and compiled evaluators per
// (model, characteristic). Entries are pure functions of their key and are
// never invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]Derivation
}

// NewCache creates an empty derivation cache. Construct once at startup and
// inject into the engine.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]Derivation)}
}

func (c *Cache) getOrDerive(key cacheKey, derive func() (Derivation, error)) (Derivation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.entries[key]; ok {
		return d, nil
	}
	d, err := derive()
	if err != nil {
		return Derivation{}, err
	}
	c.entries[key] = d
	return d, nil
}

// Len reports how many derivations are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
