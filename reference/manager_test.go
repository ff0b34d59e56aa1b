package reference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

const callbackTimeout = time.Second

func startLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})
	return loop
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(startLoop(t), WithPlatform(NewMockPlatform(0)))
}

type outcome struct {
	result int64
	err    error
}

// callbacks returns a success and error callback pair that report to the
// returned channel.
func callbacks() (SuccessCallback, ErrorCallback, <-chan outcome) {
	out := make(chan outcome, 2)
	return func(r int64) { out <- outcome{result: r} },
		func(err error) { out <- outcome{err: err} },
		out
}

func awaitOutcome(t *testing.T, out <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-out:
		return o
	case <-time.After(callbackTimeout):
		t.Fatal("callback was not invoked")
		return outcome{}
	}
}

func TestManager_SyncToSync(t *testing.T) {
	testCases := []struct {
		a, b    int64
		want    int64
		wantErr error
	}{
		{a: 1, b: 1, want: 2},
		{a: 1, b: 2, want: 3},
		{a: -7, b: 3, want: -4},
		{a: 5, b: 1, wantErr: ErrInvalidValues},
		{a: 5, b: 0, wantErr: ErrInvalidValues},
		{a: 4, b: 40, wantErr: ErrIO},
		{a: 40, b: 4, wantErr: ErrIO},
		{a: 1, b: 5, want: 6},
	}

	m := newTestManager(t)
	for _, tc := range testCases {
		t.Run("", func(t *testing.T) {
			is := is.New(t)
			got, err := m.SyncToSync(context.Background(), tc.a, tc.b)
			if tc.wantErr != nil {
				is.True(errors.Is(err, tc.wantErr))
				return
			}
			is.NoErr(err)
			is.Equal(got, tc.want)
		})
	}
}

func TestManager_Async(t *testing.T) {
	type asyncFn func(m *Manager) func(context.Context, int64, int64, SuccessCallback, ErrorCallback) error

	variants := map[string]asyncFn{
		"syncToAsync":  func(m *Manager) func(context.Context, int64, int64, SuccessCallback, ErrorCallback) error { return m.SyncToAsync },
		"asyncToAsync": func(m *Manager) func(context.Context, int64, int64, SuccessCallback, ErrorCallback) error { return m.AsyncToAsync },
	}

	for name, fn := range variants {
		t.Run(name, func(t *testing.T) {
			t.Run("should deliver the sum to the success callback", func(t *testing.T) {
				is := is.New(t)
				m := newTestManager(t)
				for _, in := range [][3]int64{{1, 2, 3}, {3, 2, 5}} {
					onSuccess, onError, out := callbacks()
					is.NoErr(fn(m)(context.Background(), in[0], in[1], onSuccess, onError))
					o := awaitOutcome(t, out)
					is.NoErr(o.err)
					is.Equal(o.result, in[2])
				}
			})

			t.Run("should fail immediately for rejected operands", func(t *testing.T) {
				is := is.New(t)
				m := newTestManager(t)
				onSuccess, onError, out := callbacks()
				err := fn(m)(context.Background(), 5, 1, onSuccess, onError)
				is.True(errors.Is(err, ErrInvalidValues))

				select {
				case o := <-out:
					t.Fatalf("unexpected callback: %+v", o)
				case <-time.After(50 * time.Millisecond):
				}
			})

			t.Run("should deliver an I/O error to the error callback", func(t *testing.T) {
				is := is.New(t)
				m := newTestManager(t)
				onSuccess, onError, out := callbacks()
				is.NoErr(fn(m)(context.Background(), 4, 40, onSuccess, onError))
				o := awaitOutcome(t, out)
				is.True(errors.Is(o.err, ErrIO))
			})

			t.Run("should drop the I/O error without an error callback", func(t *testing.T) {
				is := is.New(t)
				m := newTestManager(t)
				onSuccess, _, out := callbacks()
				is.NoErr(fn(m)(context.Background(), 4, 40, onSuccess, nil))

				// A marker posted after the error was dispatched proves nothing
				// else was delivered.
				time.Sleep(50 * time.Millisecond)
				marker := make(chan struct{})
				m.Loop().Post(func() { close(marker) })
				<-marker
				is.Equal(len(out), 0)
			})

			t.Run("should require a success callback", func(t *testing.T) {
				is := is.New(t)
				m := newTestManager(t)
				err := fn(m)(context.Background(), 1, 2, nil, nil)
				is.True(errors.Is(err, ErrTypeMismatch))
			})

			t.Run("should run callbacks on the loop after the call returned", func(t *testing.T) {
				is := is.New(t)
				m := newTestManager(t)

				// Block the loop so the callback can only run once released.
				release := make(chan struct{})
				m.Loop().Post(func() { <-release })

				onSuccess, onError, out := callbacks()
				is.NoErr(fn(m)(context.Background(), 1, 1, onSuccess, onError))
				time.Sleep(20 * time.Millisecond)
				is.Equal(len(out), 0) // callback must wait for the loop

				close(release)
				o := awaitOutcome(t, out)
				is.Equal(o.result, int64(2))
			})
		})
	}
}

func TestManager_DefaultPlatform(t *testing.T) {
	is := is.New(t)
	m := NewManager(startLoop(t))
	onSuccess, onError, out := callbacks()
	is.NoErr(m.SyncToAsync(context.Background(), 2, 2, onSuccess, onError))
	is.Equal(awaitOutcome(t, out).result, int64(4))
}

type recordingPlatform struct {
	MockPlatform
	calls []string
}

func (p *recordingPlatform) Sum(a, b int64) int64 {
	p.calls = append(p.calls, "sum")
	return p.MockPlatform.Sum(a, b)
}

func TestManager_RejectsBeforeCallingPlatform(t *testing.T) {
	is := is.New(t)
	p := &recordingPlatform{}
	m := NewManager(startLoop(t), WithPlatform(p))

	_, err := m.SyncToSync(context.Background(), 5, 1)
	is.True(errors.Is(err, ErrInvalidValues))
	is.Equal(len(p.calls), 0)

	_, err = m.SyncToSync(context.Background(), 1, 1)
	is.NoErr(err)
	is.Equal(p.calls, []string{"sum"})
}

func TestErrorName(t *testing.T) {
	is := is.New(t)
	for _, kind := range []error{ErrInvalidValues, ErrIO, ErrTypeMismatch, ErrNotFound} {
		name := ErrorName(kind)
		is.True(name != "")
		got, ok := ErrorFromName(name)
		is.True(ok)
		is.Equal(got, kind)
	}
	is.Equal(ErrorName(errors.New("other")), "")
	_, ok := ErrorFromName("UnknownError")
	is.True(!ok)
}
