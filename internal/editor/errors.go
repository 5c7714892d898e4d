// Package editor implements the page-builder document engine: tree
// primitives over node sequences, zone bookkeeping, the action reducer and
// the per-document editing session with undo/redo.
package editor

import "errors"

// Tree errors
var (
	// ErrIndexOutOfRange indicates an index outside the addressed sequence.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrZoneNotFound indicates a zone key that is not registered.
	ErrZoneNotFound = errors.New("zone not found")

	// ErrNodeNotFound indicates no node carries the requested id.
	ErrNodeNotFound = errors.New("node not found")
)

// Action errors
var (
	// ErrUnknownAction indicates an action outside the supported set.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidAction indicates an action whose fields are inconsistent.
	ErrInvalidAction = errors.New("invalid action")
)

// Session errors
var (
	// ErrSessionClosed indicates a dispatch against a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrNothingToUndo indicates the history has no earlier snapshot.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the history has no later snapshot.
	ErrNothingToRedo = errors.New("nothing to redo")
)
