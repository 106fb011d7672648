package transport

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrInvalid      = errors.New("invalid request")
)

// mapError converts a gRPC status into one of the package sentinels, keeping the message
func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		sentinel = ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		sentinel = ErrUnavailable
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists:
		sentinel = ErrInvalid
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}

// countsAsFailure decides whether err should trip the circuit breaker. Caller errors such
// as a missing product say nothing about backend health.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return true
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Unknown, codes.ResourceExhausted:
		return true
	}
	return false
}
