package sdk

import (
	"context"
	"errors"
	"testing"
	"time"

	wgrpc "github.com/lovromazgon/refimpl/grpc"
	"github.com/lovromazgon/refimpl/grpc/grpctest"
	"github.com/lovromazgon/refimpl/reference"
	"github.com/matryer/is"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func startLoop(t *testing.T) *reference.Loop {
	t.Helper()
	loop := reference.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})
	return loop
}

// newRemote wires a plugin-side manager and a host-side remote through an
// in-memory module.
func newRemote(t *testing.T) *Remote {
	t.Helper()

	manager := reference.NewManager(startLoop(t), reference.WithPlatform(reference.NewMockPlatform(0)))
	srv := wgrpc.NewServer()
	RegisterRefImpl(srv, manager)

	conn, err := wgrpc.NewClient(grpctest.NewModule(srv))
	if err != nil {
		t.Fatal(err)
	}
	return NewRemote(conn, startLoop(t), nil)
}

type outcome struct {
	result int64
	err    error
}

func awaitOutcome(t *testing.T, out <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-out:
		return o
	case <-time.After(time.Second):
		t.Fatal("callback was not invoked")
		return outcome{}
	}
}

func TestRemote_SyncToSync(t *testing.T) {
	is := is.New(t)
	r := newRemote(t)
	ctx := context.Background()

	got, err := r.SyncToSync(ctx, 1, 1)
	is.NoErr(err)
	is.Equal(got, int64(2))

	_, err = r.SyncToSync(ctx, 5, 1)
	is.True(errors.Is(err, reference.ErrInvalidValues))
	is.Equal(err.Error(), "invalid values: 5 is not allowed")
	is.Equal(status.Code(err), codes.InvalidArgument)

	_, err = r.SyncToSync(ctx, 4, 40)
	is.True(errors.Is(err, reference.ErrIO))
	is.Equal(status.Code(err), codes.Unavailable)
}

func TestRemote_Async(t *testing.T) {
	r := newRemote(t)
	variants := map[string]func(context.Context, int64, int64, reference.SuccessCallback, reference.ErrorCallback) error{
		"syncToAsync":  r.SyncToAsync,
		"asyncToAsync": r.AsyncToAsync,
	}

	for name, call := range variants {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			ctx := context.Background()

			out := make(chan outcome, 1)
			onSuccess := func(v int64) { out <- outcome{result: v} }
			onError := func(err error) { out <- outcome{err: err} }

			is.NoErr(call(ctx, 1, 2, onSuccess, onError))
			is.Equal(awaitOutcome(t, out).result, int64(3))

			is.NoErr(call(ctx, 3, 2, onSuccess, onError))
			is.Equal(awaitOutcome(t, out).result, int64(5))

			err := call(ctx, 5, 1, onSuccess, onError)
			is.True(errors.Is(err, reference.ErrInvalidValues))

			is.NoErr(call(ctx, 4, 40, onSuccess, onError))
			is.True(errors.Is(awaitOutcome(t, out).err, reference.ErrIO))

			err = call(ctx, 1, 2, nil, onError)
			is.True(errors.Is(err, reference.ErrTypeMismatch))
		})
	}
}

func TestOperands(t *testing.T) {
	is := is.New(t)
	a, b := Operands(NewOperandsRequest(-3, 1<<40))
	is.Equal(a, int64(-3))
	is.Equal(b, int64(1<<40))

	a, b = Operands(NewOperandsRequest(0, 0))
	is.Equal(a, int64(0))
	is.Equal(b, int64(0))
}

func TestStatusMapping(t *testing.T) {
	testCases := []struct {
		err      error
		wantCode codes.Code
	}{
		{err: reference.ErrInvalidValues, wantCode: codes.InvalidArgument},
		{err: reference.ErrTypeMismatch, wantCode: codes.InvalidArgument},
		{err: reference.ErrIO, wantCode: codes.Unavailable},
		{err: reference.ErrNotFound, wantCode: codes.NotFound},
	}

	for _, tc := range testCases {
		t.Run(reference.ErrorName(tc.err), func(t *testing.T) {
			is := is.New(t)
			st := toStatus(tc.err)
			is.Equal(status.Code(st), tc.wantCode)
			is.True(errors.Is(fromStatus(st), tc.err))
		})
	}

	t.Run("unknown errors", func(t *testing.T) {
		is := is.New(t)
		st := toStatus(errors.New("boom"))
		is.Equal(status.Code(st), codes.Unknown)
		is.Equal(fromStatus(st), st) // no known kind, returned as is

		plain := errors.New("plain")
		is.Equal(fromStatus(plain), plain)
	})
}
