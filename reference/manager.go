package reference

import (
	"context"
	"fmt"
	"sync"
)

// forbiddenOperand is rejected before any work is started.
const forbiddenOperand = 5

// ioErrorResult is the result the platform reports as an I/O failure.
const ioErrorResult = 44

// SuccessCallback receives the result of a deferred operation.
type SuccessCallback func(result int64)

// ErrorCallback receives the error of a deferred operation that failed after
// it was started.
type ErrorCallback func(err error)

// Provider exposes the reference operations.
//
// The async variants report two kinds of failures differently: rejected
// operands are returned as an error from the call itself and no callback is
// invoked, while failures of the computation are delivered to onError after
// the call returned.
type Provider interface {
	SyncToSync(ctx context.Context, a, b int64) (int64, error)
	SyncToAsync(ctx context.Context, a, b int64, onSuccess SuccessCallback, onError ErrorCallback) error
	AsyncToAsync(ctx context.Context, a, b int64, onSuccess SuccessCallback, onError ErrorCallback) error
}

var _ Provider = (*Manager)(nil)

// Manager implements Provider on top of a Platform. Deferred callbacks are
// run by the loop passed to NewManager.
type Manager struct {
	opts managerOptions
	loop *Loop

	props *PropertyBag

	mu        sync.Mutex // guards following fields
	counter   int
	listeners map[int]func()
	callbacks map[string]CallbackObject
}

func NewManager(loop *Loop, opt ...ManagerOption) *Manager {
	opts := defaultManagerOptions
	for _, o := range opt {
		o.applyManager(&opts)
	}
	if opts.platform == nil {
		opts.platform = NewMockPlatform(DefaultDelay)
	}

	return &Manager{
		opts:      opts,
		loop:      loop,
		props:     NewPropertyBag(opts.logger),
		listeners: make(map[int]func()),
		callbacks: make(map[string]CallbackObject),
	}
}

// Loop returns the loop that runs the manager's callbacks.
func (m *Manager) Loop() *Loop { return m.loop }

// Properties returns the manager's property bag.
func (m *Manager) Properties() *PropertyBag { return m.props }

func (m *Manager) SyncToSync(ctx context.Context, a, b int64) (int64, error) {
	if err := validateOperands(a, b); err != nil {
		return 0, err
	}

	result := m.opts.platform.Sum(a, b)
	if err := checkResult(result); err != nil {
		m.opts.logger.DebugContext(ctx, "sync operation failed", "a", a, "b", b, "error", err)
		return 0, err
	}
	return result, nil
}

func (m *Manager) SyncToAsync(ctx context.Context, a, b int64, onSuccess SuccessCallback, onError ErrorCallback) error {
	if onSuccess == nil {
		return fmt.Errorf("success callback is required: %w", ErrTypeMismatch)
	}
	if err := validateOperands(a, b); err != nil {
		return err
	}

	logger := m.opts.logger.With("operation", "syncToAsync", "a", a, "b", b)
	go func() {
		result := m.opts.platform.DelayedSum(a, b)
		if !m.loop.Post(func() { m.complete(ctx, result, onSuccess, onError) }) {
			logger.WarnContext(ctx, "loop is closed, dropping result", "result", result)
		}
	}()
	return nil
}

func (m *Manager) AsyncToAsync(ctx context.Context, a, b int64, onSuccess SuccessCallback, onError ErrorCallback) error {
	if onSuccess == nil {
		return fmt.Errorf("success callback is required: %w", ErrTypeMismatch)
	}
	if err := validateOperands(a, b); err != nil {
		return err
	}

	logger := m.opts.logger.With("operation", "asyncToAsync", "a", a, "b", b)
	m.opts.platform.SumAsync(a, b, func(result int64) {
		if !m.loop.Post(func() { m.complete(ctx, result, onSuccess, onError) }) {
			logger.WarnContext(ctx, "loop is closed, dropping result", "result", result)
		}
	})
	return nil
}

// complete runs on the loop and dispatches the result to the right callback.
func (m *Manager) complete(ctx context.Context, result int64, onSuccess SuccessCallback, onError ErrorCallback) {
	if err := checkResult(result); err != nil {
		if onError == nil {
			m.opts.logger.DebugContext(ctx, "no error callback, dropping error", "error", err)
			return
		}
		onError(err)
		return
	}
	onSuccess(result)
}

func validateOperands(a, _ int64) error {
	if a == forbiddenOperand {
		return fmt.Errorf("%w: %d is not allowed", ErrInvalidValues, a)
	}
	return nil
}

func checkResult(result int64) error {
	if result == ioErrorResult {
		return fmt.Errorf("%w: %d is I/O error", ErrIO, result)
	}
	return nil
}
