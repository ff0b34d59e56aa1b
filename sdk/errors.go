package sdk

import (
	"errors"

	"github.com/lovromazgon/refimpl/reference"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorDomain is the domain of the ErrorInfo details attached to statuses
// returned by the plugin.
const errorDomain = "refimpl.lovromazgon.github.com"

// toStatus converts an error returned by a reference.Provider into a gRPC
// status error. Known error kinds carry their name in an ErrorInfo detail.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, reference.ErrInvalidValues), errors.Is(err, reference.ErrTypeMismatch):
		code = codes.InvalidArgument
	case errors.Is(err, reference.ErrIO):
		code = codes.Unavailable
	case errors.Is(err, reference.ErrNotFound):
		code = codes.NotFound
	default:
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Error(codes.Unknown, err.Error())
	}

	st := status.New(code, err.Error())
	withDetails, detailsErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reference.ErrorName(err),
		Domain: errorDomain,
	})
	if detailsErr != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// fromStatus converts a status error returned by the plugin back into an
// error that wraps the matching reference error kind. Errors without a known
// kind are returned unchanged.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		if kind, ok := reference.ErrorFromName(info.GetReason()); ok {
			return &statusError{kind: kind, st: st}
		}
	}
	return err
}

// statusError is an error received from the plugin. It matches its kind with
// errors.Is and still exposes the original status.
type statusError struct {
	kind error
	st   *status.Status
}

func (e *statusError) Error() string              { return e.st.Message() }
func (e *statusError) Unwrap() error              { return e.kind }
func (e *statusError) GRPCStatus() *status.Status { return e.st }
