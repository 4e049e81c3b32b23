// Package script replays TOML edit scripts against a graph store.
//
// A script declares nodes and then a sequence of steps. Steps mirror the
// store's operations, so a script reads like the gestures an editor would
// send:
//
//	[[node]]
//	name = "terrain"
//	kind = "perlin3d"
//	params = { seed = 7, frequency = 3.0 }
//
//	[[node]]
//	name = "view"
//	kind = "slice"
//
//	[[step]]
//	op = "check"             # preview the drag
//	from = "terrain.out"
//	to = "view.in"
//
//	[[step]]
//	op = "connect"
//	from = "terrain.out"
//	to = "view.in"
//
//	[[step]]
//	op = "tick"
//	settle = true
//
// Pin references are "node.pin". A step may name the error code it expects
// with expect = "TYPE_MISMATCH"; the step then passes only if the operation
// fails with that code.
package script
