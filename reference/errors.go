package reference

import "errors"

var (
	// ErrInvalidValues is returned when the operands are rejected before any
	// work is started.
	ErrInvalidValues = errors.New("invalid values")
	// ErrIO is reported when the platform produced a result that maps to an
	// I/O failure.
	ErrIO = errors.New("i/o error")
	// ErrTypeMismatch is returned when an argument has the wrong shape, e.g. a
	// missing success callback.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNotFound is returned by PropertyBag.Lookup and Manager.Callback when
	// the property or callback does not exist.
	ErrNotFound = errors.New("not found")
)

// ErrorName returns the Web API name of the error kind wrapped by err, or an
// empty string if err does not wrap a known kind.
func ErrorName(err error) string {
	switch {
	case errors.Is(err, ErrInvalidValues):
		return "InvalidValuesError"
	case errors.Is(err, ErrIO):
		return "IOError"
	case errors.Is(err, ErrTypeMismatch):
		return "TypeMismatchError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	}
	return ""
}

// ErrorFromName is the inverse of ErrorName.
func ErrorFromName(name string) (error, bool) {
	switch name {
	case "InvalidValuesError":
		return ErrInvalidValues, true
	case "IOError":
		return ErrIO, true
	case "TypeMismatchError":
		return ErrTypeMismatch, true
	case "NotFoundError":
		return ErrNotFound, true
	}
	return nil, false
}
