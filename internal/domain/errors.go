package domain

import "errors"

// Error taxonomy shared across packages. Callers wrap these with
// fmt.Errorf("...: %w", ...) and check with errors.Is.
var (
	// ErrNotFound indicates a session id that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed input to a pure operation,
	// such as an unknown message role.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage indicates a durable read or write failure.
	ErrStorage = errors.New("storage failure")

	// ErrUpstreamTimeout indicates the generation backend or retriever
	// exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstreamFailure indicates the generation backend or retriever
	// was unreachable or returned an error.
	ErrUpstreamFailure = errors.New("upstream failure")
)
