package globe

import "errors"

var (
	// ErrInvalidConfig is returned when a projection config is rejected.
	ErrInvalidConfig = errors.New("invalid projection config")
	// ErrNonFiniteTween is returned when a tween endpoint is NaN or infinite.
	ErrNonFiniteTween = errors.New("tween values must be finite")
	// ErrMalformedGeometry marks a feature that cannot be projected or centred.
	ErrMalformedGeometry = errors.New("malformed geometry")
	// ErrDisposed is returned by operations on a disposed engine.
	ErrDisposed = errors.New("engine disposed")
)
