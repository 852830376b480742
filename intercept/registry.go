package intercept

import (
	"log/slog"
	"sync"
)

// Loader is the host's module loader surface: lookups of already-loaded
// modules plus an observer feed of future loads.
type Loader interface {
	// Lookup returns the named module when it is already loaded.
	Lookup(name string) (Module, bool)

	// Observe registers fn to be called on every subsequent module load.
	// The returned cancel function deregisters it.
	Observe(fn func(Module)) (cancel func())
}

// Patch substitutes capability implementations into a module. It returns
// (true, nil) when the patch fully applied, (false, nil) when the module
// is not patchable yet (the registry keeps waiting for a later load), and
// an error when the module was located but substitution failed.
type Patch func(Module) (bool, error)

// Registry drives a patch to application exactly once. Its state moves
// from no-hook to hook-installed to patch-applied, or back to no-hook
// when a patch attempt fails; there is no un-patching once applied. One
// mutex guards both flags.
type Registry struct {
	loader Loader
	patch  Patch
	log    *slog.Logger

	mu            sync.Mutex
	names         map[string]struct{}
	hookInstalled bool
	applied       bool
	cancel        func()
}

// NewRegistry creates a registry over the loader and patch routine. A nil
// logger falls back to slog.Default.
func NewRegistry(loader Loader, patch Patch, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		loader: loader,
		patch:  patch,
		log:    log,
		names:  make(map[string]struct{}),
	}
}

// Applied reports whether the patch has been applied.
func (r *Registry) Applied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}

// HookInstalled reports whether a load observer is currently registered.
func (r *Registry) HookInstalled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hookInstalled
}

// TryPatchNow patches the named module immediately when it is already
// loaded and ready. When it is absent or still loading, a load hook is
// installed instead and TryPatchNow returns false. Re-invocation after
// the patch applied is a no-op returning true.
func (r *Registry) TryPatchNow(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied {
		return true
	}

	m, ok := r.loader.Lookup(name)
	if !ok || !m.Ready() {
		r.installHookLocked(name)
		return false
	}
	return r.attemptLocked(m)
}

// InstallHook registers a load observer for the given module names. Names
// accumulate across calls; once the patch is applied the call is a no-op.
func (r *Registry) InstallHook(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installHookLocked(names...)
}

// RemoveHook deregisters the load observer, if any.
func (r *Registry) RemoveHook() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeHookLocked()
}

func (r *Registry) installHookLocked(names ...string) {
	if r.applied {
		return
	}
	for _, name := range names {
		r.names[name] = struct{}{}
	}
	if r.hookInstalled {
		return
	}
	r.cancel = r.loader.Observe(r.onLoad)
	r.hookInstalled = true
	r.log.Debug("module load hook installed")
}

func (r *Registry) removeHookLocked() {
	if !r.hookInstalled {
		return
	}
	r.cancel()
	r.cancel = nil
	r.hookInstalled = false
	r.log.Debug("module load hook removed")
}

// onLoad is the observer installed with the loader. Untracked modules are
// ignored; a tracked module that is not ready yet keeps the hook alive
// for a later load event.
func (r *Registry) onLoad(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied {
		return
	}
	if _, tracked := r.names[m.Name()]; !tracked {
		return
	}
	if !m.Ready() {
		return
	}
	r.attemptLocked(m)
}

// attemptLocked runs the patch once. Success marks the registry applied
// and removes the hook. A failure is logged once and the hook is removed
// so a broken patch cannot retry forever; the host keeps its original
// behavior. A decline (not patchable yet) leaves the hook in place.
func (r *Registry) attemptLocked(m Module) bool {
	applied, err := r.patch(m)
	if err != nil {
		r.log.Warn("patch failed, keeping original behavior", "module", m.Name(), "error", err)
		r.removeHookLocked()
		return false
	}
	if !applied {
		return false
	}
	r.applied = true
	r.removeHookLocked()
	return true
}

// Host is an in-process module table implementing Loader. Registering a
// module stands in for a load event and notifies observers.
type Host struct {
	mu        sync.Mutex
	modules   map[string]Module
	observers map[int]func(Module)
	nextID    int
}

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{
		modules:   make(map[string]Module),
		observers: make(map[int]func(Module)),
	}
}

// Register adds the module to the table and notifies observers. Observers
// run outside the host's lock so they may deregister themselves.
func (h *Host) Register(m Module) {
	h.mu.Lock()
	h.modules[m.Name()] = m
	fns := make([]func(Module), 0, len(h.observers))
	for _, fn := range h.observers {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}

// Lookup returns the named module when registered.
func (h *Host) Lookup(name string) (Module, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modules[name]
	return m, ok
}

// Observe registers a load observer and returns its cancel function.
func (h *Host) Observe(fn func(Module)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.observers[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.observers, id)
	}
}
