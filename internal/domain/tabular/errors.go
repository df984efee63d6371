package tabular

import "errors"

// Sentinel kinds for decoder errors.
var (
	ErrEmptyInput = errors.New("input contains no rows")
)
