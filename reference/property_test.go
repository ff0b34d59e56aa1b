package reference

import (
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestPropertyBag(t *testing.T) {
	t.Run("should keep scopes apart", func(t *testing.T) {
		is := is.New(t)
		p := NewPropertyBag(slog.Default())

		is.NoErr(p.SetProperty("a", "name", "alice"))
		is.NoErr(p.SetProperty("b", "name", "bob"))

		is.Equal(p.StringValue("a", "name"), "alice")
		is.Equal(p.StringValue("b", "name"), "bob")

		p.DeleteScope("a")
		_, ok := p.Property("a", "name")
		is.True(!ok)
		is.Equal(p.StringValue("b", "name"), "bob")
	})

	t.Run("should return defaults for missing properties", func(t *testing.T) {
		is := is.New(t)
		p := NewPropertyBag(slog.Default())

		is.Equal(p.NumberValue("s", "missing"), 0.0)
		is.Equal(p.BoolValue("s", "missing"), false)
		is.Equal(p.StringValue("s", "missing"), "undefined")
	})

	t.Run("should convert values", func(t *testing.T) {
		is := is.New(t)
		p := NewPropertyBag(slog.Default())

		is.NoErr(p.SetProperty("s", "n", int64(7)))
		is.NoErr(p.SetProperty("s", "f", "2.5"))
		is.NoErr(p.SetProperty("s", "word", "seven"))
		is.NoErr(p.SetProperty("s", "flag", true))

		is.Equal(p.NumberValue("s", "n"), 7.0)
		is.Equal(p.NumberValue("s", "f"), 2.5)
		is.True(math.IsNaN(p.NumberValue("s", "word")))
		is.Equal(p.NumberValue("s", "flag"), 1.0)
		is.Equal(p.StringValue("s", "n"), "7")
		is.True(p.BoolValue("s", "word"))
	})

	t.Run("should convert blank strings and every integer kind", func(t *testing.T) {
		is := is.New(t)
		p := NewPropertyBag(slog.Default())

		is.NoErr(p.SetProperty("s", "empty", ""))
		is.NoErr(p.SetProperty("s", "blank", " \t"))
		is.NoErr(p.SetProperty("s", "padded", " 7 "))
		is.NoErr(p.SetProperty("s", "i8", int8(-8)))
		is.NoErr(p.SetProperty("s", "i16", int16(16)))
		is.NoErr(p.SetProperty("s", "u8", uint8(8)))
		is.NoErr(p.SetProperty("s", "u64", uint64(64)))

		is.Equal(p.NumberValue("s", "empty"), 0.0)
		is.Equal(p.NumberValue("s", "blank"), 0.0)
		is.Equal(p.NumberValue("s", "padded"), 7.0)
		is.Equal(p.NumberValue("s", "i8"), -8.0)
		is.Equal(p.NumberValue("s", "i16"), 16.0)
		is.Equal(p.NumberValue("s", "u8"), 8.0)
		is.Equal(p.NumberValue("s", "u64"), 64.0)
	})

	t.Run("should report missing properties on lookup", func(t *testing.T) {
		is := is.New(t)
		p := NewPropertyBag(slog.Default())

		is.NoErr(p.SetProperty("s", "x", "value"))
		v, err := p.Lookup("s", "x")
		is.NoErr(err)
		is.Equal(v, "value")

		_, err = p.Lookup("s", "missing")
		is.True(errors.Is(err, ErrNotFound))
		_, err = p.Lookup("other", "x")
		is.True(errors.Is(err, ErrNotFound))
	})

	t.Run("should delete a property", func(t *testing.T) {
		is := is.New(t)
		p := NewPropertyBag(slog.Default())

		is.NoErr(p.SetProperty("s", "x", 1.0))
		p.DeleteProperty("s", "x")
		p.DeleteProperty("s", "missing")
		p.DeleteProperty("nope", "x")
		_, ok := p.Property("s", "x")
		is.True(!ok)
	})

	t.Run("should keep Number read-only", func(t *testing.T) {
		is := is.New(t)
		p := NewPropertyBag(slog.Default())

		err := p.SetProperty("s", NumberProperty, 3.0)
		is.True(errors.Is(err, ErrTypeMismatch))
		is.Equal(p.NumberValue("s", NumberProperty), 0.0)

		p.UpdateNumber("s", 42)
		is.Equal(p.NumberValue("s", NumberProperty), 42.0)
	})
}
