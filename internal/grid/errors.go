package grid

import "errors"

// ErrInvalidArgument reports a precondition violation by the caller: an
// out-of-range index, malformed block bounds, or a block collection that does
// not fit the current selection mode.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidOperation reports a call made in the wrong state, such as reading
// the active edit control while no edit session exists.
var ErrInvalidOperation = errors.New("invalid operation")

// ErrCallbackPanic wraps a panic recovered from a host callback during a
// gesture. The gesture is aborted and the capture reset.
var ErrCallbackPanic = errors.New("panic in grid callback")
