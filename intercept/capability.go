package intercept

import "sync"

// Capability is a named extension point on a host module. Its
// implementation is substituted at most once; later installs keep the
// first implementation, so the installed value's identity is stable no
// matter how many code paths race to patch it.
type Capability struct {
	name string

	mu        sync.Mutex
	impl      any
	installed bool
}

// NewCapability creates an empty capability slot.
func NewCapability(name string) *Capability {
	return &Capability{name: name}
}

// Name returns the capability's name.
func (c *Capability) Name() string { return c.name }

// Install substitutes the implementation if the slot is still empty. It
// reports whether this call performed the substitution.
func (c *Capability) Install(impl any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.installed {
		return false
	}
	c.impl = impl
	c.installed = true
	return true
}

// Installed reports whether an implementation has been substituted.
func (c *Capability) Installed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.installed
}

// Impl returns the installed implementation, or nil when the slot is
// empty.
func (c *Capability) Impl() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.impl
}

// Module is a host module exposing capability slots.
type Module interface {
	// Name returns the module's tracked name.
	Name() string

	// Capability returns the named slot, or nil when the host does not
	// expose that extension point.
	Capability(name string) *Capability

	// Ready reports whether the module is fully loaded. A patch attempt
	// against a module that is not ready declines without error.
	Ready() bool
}

// BasicModule is a Module assembled from named capability slots.
type BasicModule struct {
	name string

	mu    sync.Mutex
	caps  map[string]*Capability
	ready bool
}

// NewModule creates a module with no capabilities, marked ready.
func NewModule(name string) *BasicModule {
	return &BasicModule{
		name:  name,
		caps:  make(map[string]*Capability),
		ready: true,
	}
}

// Name returns the module's name.
func (m *BasicModule) Name() string { return m.name }

// AddCapability declares an extension point and returns its slot. Adding
// a name twice returns the existing slot.
func (m *BasicModule) AddCapability(name string) *Capability {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.caps[name]; ok {
		return c
	}
	c := NewCapability(name)
	m.caps[name] = c
	return c
}

// Capability returns the named slot, or nil.
func (m *BasicModule) Capability(name string) *Capability {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps[name]
}

// Ready reports whether the module is fully loaded.
func (m *BasicModule) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// SetReady marks the module loaded or still loading.
func (m *BasicModule) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}
