package operator

import "sort"

// FunctionCache memoizes function declarations by name, so repeated requests
// for the same named field reuse the previous declaration. There is at most
// one live declaration per name. The cache is owned by a single solver
// invocation; it is not safe for concurrent use without external locking.
type FunctionCache struct {
	vars map[string]*Function
}

// NewFunctionCache returns an empty cache.
func NewFunctionCache() *FunctionCache {
	return &FunctionCache{vars: make(map[string]*Function)}
}

// GetOrCreate returns the cached declaration for name when reuse is true and
// one exists; otherwise it invokes factory, stores the result under name and
// returns it. A re-created entry replaces the old one, which is released
// first so its buffer is reclaimed before the new allocation.
func (c *FunctionCache) GetOrCreate(name string, reuse bool, factory func() (*Function, error)) (*Function, error) {
	if reuse {
		if fun, ok := c.vars[name]; ok {
			return fun, nil
		}
	}

	if _, ok := c.vars[name]; ok {
		c.Release(name)
	}

	fun, err := factory()
	if err != nil {
		return nil, err
	}
	c.vars[name] = fun
	return fun, nil
}

// Get returns the cached declaration for name, if any.
func (c *FunctionCache) Get(name string) (*Function, bool) {
	fun, ok := c.vars[name]
	return fun, ok
}

// Release drops the declaration stored under name and frees its device
// buffers immediately, rather than waiting for collection. Field buffers can
// be large relative to device memory; prompt release keeps peak usage
// bounded when many fields are declared and discarded in sequence. Releasing
// an absent name is a no-op.
func (c *FunctionCache) Release(name string) {
	fun, ok := c.vars[name]
	if !ok {
		return
	}
	fun.Free()
	delete(c.vars, name)
}

// Names returns the cached names in sorted order.
func (c *FunctionCache) Names() []string {
	names := make([]string, 0, len(c.vars))
	for name := range c.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of live declarations.
func (c *FunctionCache) Len() int { return len(c.vars) }

// Clear releases every declaration.
func (c *FunctionCache) Clear() {
	for name := range c.vars {
		c.Release(name)
	}
}
