package graph

import errs "github.com/matzehuels/noisegraph/pkg/errors"

// Sentinel errors returned by [Store] operations. Each is an *errors.Error
// carrying its code; errors.Is matches any error with the same code, so the
// detailed messages the store builds still compare equal to these.
var (
	// ErrUnknownID is returned for a NodeID that is zero, removed, or foreign.
	ErrUnknownID = errs.New(errs.ErrCodeUnknownID, "unknown node id")

	// ErrUnknownPin is returned by [Store.TryConnect] when either pin id does
	// not resolve.
	ErrUnknownPin = errs.New(errs.ErrCodeUnknownPin, "unknown pin id")

	// ErrUnknownLink is returned by [Store.Disconnect] for a stale link id.
	ErrUnknownLink = errs.New(errs.ErrCodeUnknownLink, "unknown link id")

	// ErrSameNode is returned when both pins belong to one node.
	ErrSameNode = errs.New(errs.ErrCodeSameNode, "pins belong to the same node")

	// ErrDirectionMismatch is returned for two inputs or two outputs.
	ErrDirectionMismatch = errs.New(errs.ErrCodeDirectionMismatch, "pins have the same direction")

	// ErrTypeMismatch is returned when the pins' type tags differ.
	ErrTypeMismatch = errs.New(errs.ErrCodeTypeMismatch, "pin types differ")

	// ErrDestinationAlreadyConnected is returned when the input side already
	// has a source. Inputs are single-source.
	ErrDestinationAlreadyConnected = errs.New(errs.ErrCodeDestinationAlreadyConnected, "destination already connected")

	// ErrIncompatibleSourceKind is returned when the destination kind rejects
	// the upstream producer.
	ErrIncompatibleSourceKind = errs.New(errs.ErrCodeIncompatibleSourceKind, "incompatible source kind")

	// ErrWouldCreateCycle is returned when the destination node already
	// reaches the source node downstream.
	ErrWouldCreateCycle = errs.New(errs.ErrCodeWouldCreateCycle, "link would create a cycle")

	// ErrNotConfigurable is returned by [Store.SetParam] for kinds without
	// editable settings.
	ErrNotConfigurable = errs.New(errs.ErrCodeInvalidParam, "kind has no parameters")
)
