package reference

import (
	"log/slog"
	"time"
)

type loopOptions struct {
	logger *slog.Logger
}

var defaultLoopOptions = loopOptions{
	logger: slog.Default(),
}

type managerOptions struct {
	logger   *slog.Logger
	platform Platform
}

var defaultManagerOptions = managerOptions{
	logger: slog.Default(),
}

// LoopOption configures the loop.
type LoopOption interface {
	applyLoop(opt *loopOptions)
}

// loopOptionFunc wraps a function that modifies loopOptions into an
// implementation of the LoopOption interface.
type loopOptionFunc func(*loopOptions)

func (f loopOptionFunc) applyLoop(opt *loopOptions) { f(opt) }

// ManagerOption configures the manager.
type ManagerOption interface {
	applyManager(opt *managerOptions)
}

// managerOptionFunc wraps a function that modifies managerOptions into an
// implementation of the ManagerOption interface.
type managerOptionFunc func(*managerOptions)

func (f managerOptionFunc) applyManager(opt *managerOptions) { f(opt) }

// LoopManagerOption is an option that can configure both the Loop and the
// Manager.
type LoopManagerOption interface {
	LoopOption
	ManagerOption
}

type loopManagerOptionFunc struct {
	loopOptionFunc
	managerOptionFunc
}

// WithLogger returns a LoopManagerOption that sets the logger for the loop or
// the manager.
func WithLogger(l *slog.Logger) LoopManagerOption {
	return loopManagerOptionFunc{
		loopOptionFunc:    func(opt *loopOptions) { opt.logger = l },
		managerOptionFunc: func(opt *managerOptions) { opt.logger = l },
	}
}

// WithPlatform sets the backend the manager delegates the computation to. By
// default the manager uses NewMockPlatform(DefaultDelay).
func WithPlatform(p Platform) ManagerOption {
	return managerOptionFunc(func(opt *managerOptions) { opt.platform = p })
}

// DefaultDelay is the delay of the default mock platform.
const DefaultDelay = 10 * time.Millisecond
