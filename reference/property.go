package reference

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
)

// NumberProperty is the read-only property changed through UpdateNumber.
const NumberProperty = "Number"

// PropertyBag stores properties per scope. Values are stored as given and
// converted by the typed getters.
type PropertyBag struct {
	logger *slog.Logger

	mu   sync.RWMutex
	bags map[string]map[string]any
}

func NewPropertyBag(logger *slog.Logger) *PropertyBag {
	return &PropertyBag{
		logger: logger,
		bags:   make(map[string]map[string]any),
	}
}

// Property returns the value stored under name in scope.
func (p *PropertyBag) Property(scope, name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.bags[scope][name]
	return v, ok
}

// Lookup is like Property but returns ErrNotFound for a missing property.
func (p *PropertyBag) Lookup(scope, name string) (any, error) {
	v, ok := p.Property(scope, name)
	if !ok {
		return nil, fmt.Errorf("property %q of scope %q: %w", name, scope, ErrNotFound)
	}
	return v, nil
}

// SetProperty stores value under name in scope. Read-only properties can not
// be set and return ErrTypeMismatch.
func (p *PropertyBag) SetProperty(scope, name string, value any) error {
	if name == NumberProperty {
		return fmt.Errorf("property %q is read-only: %w", name, ErrTypeMismatch)
	}
	p.set(scope, name, value)
	return nil
}

// UpdateNumber sets the read-only Number property of scope.
func (p *PropertyBag) UpdateNumber(scope string, v int64) {
	p.set(scope, NumberProperty, float64(v))
}

// DeleteProperty removes name from scope. Missing properties are ignored.
func (p *PropertyBag) DeleteProperty(scope, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.bags[scope], name)
}

// DeleteScope removes all properties of scope.
func (p *PropertyBag) DeleteScope(scope string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.bags, scope)
}

func (p *PropertyBag) set(scope, name string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bag, ok := p.bags[scope]
	if !ok {
		bag = make(map[string]any)
		p.bags[scope] = bag
	}
	bag[name] = value
}

// NumberValue returns the property as a float64. A missing property is 0, a
// property that can not be converted is NaN.
func (p *PropertyBag) NumberValue(scope, name string) float64 {
	v, ok := p.Property(scope, name)
	if !ok || v == nil {
		return 0
	}
	switch v := v.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		// Surrounding white space is ignored and a blank string is 0.
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return f
		}
	}
	p.logger.Debug("cannot convert property to number", "scope", scope, "property", name)
	return math.NaN()
}

// BoolValue returns the property as a bool. A missing property is false.
func (p *PropertyBag) BoolValue(scope, name string) bool {
	v, ok := p.Property(scope, name)
	if !ok || v == nil {
		return false
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int64:
		return v != 0
	case int:
		return v != 0
	}
	return true
}

// StringValue returns the property as a string. A missing property is
// "undefined".
func (p *PropertyBag) StringValue(scope, name string) string {
	v, ok := p.Property(scope, name)
	if !ok || v == nil {
		return "undefined"
	}
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
