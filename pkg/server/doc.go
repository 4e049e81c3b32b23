// Package server exposes one live graph over HTTP.
//
// The server is meant for editor front-ends: it answers the same questions a
// node editor asks the engine (can these two pins connect, what is dirty,
// what does the graph look like) and applies mutations under a single lock.
//
// # Routes
//
//	GET    /healthz                liveness
//	GET    /session                session id and graph counts
//	GET    /nodes                  all node views
//	GET    /nodes/{node}           one node view
//	PUT    /nodes/{node}/params    set parameters, body {"name": value}
//	POST   /nodes/{node}/dirty     mark a node and its downstream dirty
//	GET    /nodes/{node}/image.png latest image of a render node
//	GET    /links                  all link views
//	POST   /links                  connect, body {"from", "to", "commit"}
//	DELETE /links/{link}           disconnect
//	POST   /tick                   one tick, or ?settle=true to settle
//	GET    /graph.dot              layered DOT of the graph
//	GET    /graph.svg              SVG of /graph.dot, cached by content
//
// {node} is a declared node name or a NodeID ("index.gen"). Pin references
// in request bodies are "node.pin" or a PinID.
//
// # Errors
//
// Failures are JSON objects {"code", "error"} where code is the engine's
// [errors.Code]. UNKNOWN_* codes map to 404, connect refusals to 409 and
// INVALID_* codes to 400.
package server
