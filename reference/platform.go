package reference

import "time"

// Platform is the backend the manager delegates the computation to.
type Platform interface {
	// Sum computes the result and returns immediately.
	Sum(a, b int64) int64
	// DelayedSum computes the result, blocking the caller for a while. The
	// manager calls it from a worker goroutine.
	DelayedSum(a, b int64) int64
	// SumAsync computes the result in the background and calls done with it.
	// done may be called from any goroutine.
	SumAsync(a, b int64, done func(result int64))
}

// MockPlatform is a Platform that adds the operands.
type MockPlatform struct {
	delay time.Duration
}

var _ Platform = (*MockPlatform)(nil)

// NewMockPlatform returns a platform whose blocking and asynchronous variants
// wait for delay before producing the result.
func NewMockPlatform(delay time.Duration) *MockPlatform {
	return &MockPlatform{delay: delay}
}

func (p *MockPlatform) Sum(a, b int64) int64 {
	return a + b
}

func (p *MockPlatform) DelayedSum(a, b int64) int64 {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return a + b
}

func (p *MockPlatform) SumAsync(a, b int64, done func(int64)) {
	go func() {
		done(p.DelayedSum(a, b))
	}()
}
