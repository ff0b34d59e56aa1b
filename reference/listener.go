package reference

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// CallbackObject is a set of named callbacks registered for a scope.
type CallbackObject map[string]func()

// Validate checks that obj has a non-nil callback for every name. A nil
// object is accepted only if nullable is true.
func (obj CallbackObject) Validate(nullable bool, names ...string) error {
	if obj == nil {
		if nullable {
			return nil
		}
		return fmt.Errorf("callback object is required: %w", ErrTypeMismatch)
	}
	for _, name := range names {
		if obj[name] == nil {
			return fmt.Errorf("callback object has no function %q: %w", name, ErrTypeMismatch)
		}
	}
	return nil
}

// AddListener registers fn to be called on every Fire and returns its id.
// Ids start at 0 and are never reused.
func (m *Manager) AddListener(fn func()) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.counter
	m.counter++
	m.listeners[id] = fn
	return id
}

// RemoveListener unregisters the listener with the given id. Unknown ids are
// ignored.
func (m *Manager) RemoveListener(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, id)
}

// Fire schedules a broadcast to all listeners on the loop. The broadcast calls
// the listeners registered at the time it runs, in id order; changes made by
// a listener during the broadcast take effect on the next one.
func (m *Manager) Fire() {
	if !m.loop.Post(m.broadcast) {
		m.opts.logger.Warn("loop is closed, dropping broadcast")
	}
}

func (m *Manager) broadcast() {
	m.mu.Lock()
	snapshot := maps.Clone(m.listeners)
	m.mu.Unlock()

	for _, id := range slices.Sorted(maps.Keys(snapshot)) {
		snapshot[id]()
	}
}

// SetCallback registers obj as the callback object of scope, replacing the
// previous one.
func (m *Manager) SetCallback(scope string, obj CallbackObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks[scope] = obj
}

// UnsetCallback removes the callback object of scope.
func (m *Manager) UnsetCallback(scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.callbacks, scope)
}

// FireCallback schedules the callback called name of the scope's callback
// object on the loop. The lookup happens when the loop runs it, so a callback
// object unset in the meantime is not invoked.
func (m *Manager) FireCallback(scope, name string) {
	ok := m.loop.Post(func() {
		m.invokeCallback(context.Background(), scope, name)
	})
	if !ok {
		m.opts.logger.Warn("loop is closed, dropping callback", "scope", scope, "callback", name)
	}
}

// Callback returns the callback called name of the scope's callback object.
// It returns ErrNotFound if the scope has no callback object or the object has
// no such callback.
func (m *Manager) Callback(scope, name string) (func(), error) {
	m.mu.Lock()
	obj, ok := m.callbacks[scope]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no callback object for scope %q: %w", scope, ErrNotFound)
	}
	fn := obj[name]
	if fn == nil {
		return nil, fmt.Errorf("callback object of scope %q has no callback %q: %w", scope, name, ErrNotFound)
	}
	return fn, nil
}

func (m *Manager) invokeCallback(ctx context.Context, scope, name string) {
	fn, err := m.Callback(scope, name)
	if err != nil {
		m.opts.logger.DebugContext(ctx, "skipping callback", "error", err)
		return
	}
	fn()
}
