// Package idgen provides the default UUID generator a Datastore uses to
// mint request and subscription identifiers when a caller doesn't supply
// its own.
package idgen
