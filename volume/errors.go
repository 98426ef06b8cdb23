package volume

import "errors"

// ErrInvalidParam is returned when a caller passes an argument the geometry
// containers cannot accept: a nil face or volume, a negative or out of range
// index, or negative extents.
var ErrInvalidParam = errors.New("invalid parameter")
