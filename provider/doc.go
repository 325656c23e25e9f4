// Package provider defines the interface between the graph executor and AI
// completion services, plus the streaming chunk model shared by both sides.
//
// Implementations handle the specifics of one service (request shape,
// authentication, stream decoding) while the executor stays provider-agnostic.
package provider
