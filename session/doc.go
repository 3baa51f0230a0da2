// Package session keeps the mapping between opaque session identifiers and
// the principal that owns them.
//
// Stores are composed instead of stacked: a Keyed store generates ids and
// writes entries to a Records backend (memory, sqlite, redis), and Expiring
// wraps any EntryStore to apply the configured duration at read time.
//
// Expiry is lazy. An expired entry still exists physically until it is
// destroyed or purged by the backend, but it never resolves to a principal.
package session
