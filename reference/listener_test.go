package reference

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

// flush waits until everything posted to the loop so far has run.
func flush(t *testing.T, loop *Loop) {
	t.Helper()
	done := make(chan struct{})
	if !loop.Post(func() { close(done) }) {
		t.Fatal("loop is closed")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not flush")
	}
}

func TestManager_Listeners(t *testing.T) {
	t.Run("should assign increasing ids", func(t *testing.T) {
		is := is.New(t)
		m := newTestManager(t)
		is.Equal(m.AddListener(func() {}), 0)
		is.Equal(m.AddListener(func() {}), 1)
		m.RemoveListener(0)
		is.Equal(m.AddListener(func() {}), 2)
	})

	t.Run("should call every listener on fire", func(t *testing.T) {
		is := is.New(t)
		m := newTestManager(t)

		var calls []string
		m.AddListener(func() { calls = append(calls, "a") })
		id := m.AddListener(func() { calls = append(calls, "b") })
		m.AddListener(func() { calls = append(calls, "c") })

		m.Fire()
		flush(t, m.Loop())
		is.Equal(calls, []string{"a", "b", "c"})

		m.RemoveListener(id)
		m.RemoveListener(42) // unknown ids are ignored
		m.Fire()
		flush(t, m.Loop())
		is.Equal(calls, []string{"a", "b", "c", "a", "c"})
	})

	t.Run("should broadcast to a snapshot", func(t *testing.T) {
		is := is.New(t)
		m := newTestManager(t)

		var calls []string
		var second int
		m.AddListener(func() {
			calls = append(calls, "first")
			m.RemoveListener(second)
			m.AddListener(func() { calls = append(calls, "late") })
		})
		second = m.AddListener(func() { calls = append(calls, "second") })

		m.Fire()
		flush(t, m.Loop())
		is.Equal(calls, []string{"first", "second"})
	})
}

func TestManager_CallbackObject(t *testing.T) {
	t.Run("should invoke the named callback of the scope", func(t *testing.T) {
		is := is.New(t)
		m := newTestManager(t)

		var calls []string
		m.SetCallback("frame-1", CallbackObject{
			"onchanged": func() { calls = append(calls, "frame-1/onchanged") },
		})
		m.SetCallback("frame-2", CallbackObject{
			"onchanged": func() { calls = append(calls, "frame-2/onchanged") },
		})

		m.FireCallback("frame-2", "onchanged")
		m.FireCallback("frame-2", "missing")
		m.FireCallback("unknown", "onchanged")
		flush(t, m.Loop())
		is.Equal(calls, []string{"frame-2/onchanged"})
	})

	t.Run("should look up callbacks", func(t *testing.T) {
		is := is.New(t)
		m := newTestManager(t)

		called := false
		m.SetCallback("frame", CallbackObject{"fn": func() { called = true }, "empty": nil})

		fn, err := m.Callback("frame", "fn")
		is.NoErr(err)
		fn()
		is.True(called)

		_, err = m.Callback("frame", "missing")
		is.True(errors.Is(err, ErrNotFound))
		_, err = m.Callback("frame", "empty")
		is.True(errors.Is(err, ErrNotFound))
		_, err = m.Callback("unknown", "fn")
		is.True(errors.Is(err, ErrNotFound))
	})

	t.Run("should not invoke an unset callback object", func(t *testing.T) {
		is := is.New(t)
		m := newTestManager(t)

		called := false
		m.SetCallback("frame", CallbackObject{"fn": func() { called = true }})
		m.UnsetCallback("frame")
		m.FireCallback("frame", "fn")
		flush(t, m.Loop())
		is.True(!called)
	})
}

func TestCallbackObject_Validate(t *testing.T) {
	is := is.New(t)
	obj := CallbackObject{"fun1": func() {}, "fun2": func() {}, "fun3": nil}

	is.NoErr(obj.Validate(false, "fun1", "fun2"))
	is.True(errors.Is(obj.Validate(false, "fun1", "fun3"), ErrTypeMismatch))
	is.True(errors.Is(obj.Validate(false, "fun4"), ErrTypeMismatch))

	var nilObj CallbackObject
	is.NoErr(nilObj.Validate(true, "fun1"))
	is.True(errors.Is(nilObj.Validate(false, "fun1"), ErrTypeMismatch))
}
