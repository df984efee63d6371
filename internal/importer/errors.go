package importer

import "errors"

// Sentinel kinds for import configuration errors, raised before any
// processing starts.
var (
	ErrUnknownKind = errors.New("unknown import kind")
	ErrNoInput     = errors.New("no rows supplied")
)
