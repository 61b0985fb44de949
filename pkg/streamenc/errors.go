// ABOUTME: Sentinel errors for the encoder adapter
// ABOUTME: Callers match them with errors.Is
package streamenc

import "errors"

var (
	// ErrInvalidConfig means a Config value is outside what the codec supports
	ErrInvalidConfig = errors.New("invalid encoder config")

	// ErrInitFailed means the codec rejected the configuration at Initialize
	ErrInitFailed = errors.New("encoder initialization failed")

	// ErrInvalidArgument means the caller violated a call contract, such as
	// submitting a frame of the wrong length
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEncodeFailure is a fatal codec failure. Once returned, the session is
	// broken and every later submit or drain returns it again.
	ErrEncodeFailure = errors.New("encode failure")

	ErrNotInitialized     = errors.New("encoder not initialized")
	ErrAlreadyInitialized = errors.New("encoder already initialized")
	ErrClosed             = errors.New("encoder closed")
	ErrFlushed            = errors.New("encoder flushed")
)
