// Package proto defines the wire-level message exchanged between a
// Datastore and its attached remotes, and the callback shape every
// collaborator of the dispatcher is built around.
//
// A Message is deliberately minimal: four fields, lossless in both
// directions. Everything the dispatcher needs to know about an exchange
// (which operation it names, which path it addresses, which request or
// subscription it correlates with, and what data, if any, it carries) is
// present directly on the struct. Anything beyond that (framing, an outer
// envelope, transport headers) belongs to whatever carries the Message
// across a process boundary, not to this package.
package proto
