package upstream

import "fmt"

// UpstreamError describes a failed upstream operation. Shape marks a
// malformed payload (fetch succeeded but the expected structure was absent)
// as opposed to a transport or status failure. Both classes feed the same
// fallback path in the caller.
type UpstreamError struct {
	Op     string
	Status int
	Shape  bool
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Shape:
		return fmt.Sprintf("upstream %s: malformed payload: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("upstream %s: status %d: %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// shapeErr builds a malformed-payload error for op.
func shapeErr(op, format string, args ...any) *UpstreamError {
	return &UpstreamError{Op: op, Shape: true, Err: fmt.Errorf(format, args...)}
}
