// Package password hashes and verifies user secrets.
//
// Hashes are opaque to the rest of the system: they are stored as bytes
// and only ever compared through Hasher.Verify. Two algorithms are
// available, bcrypt and argon2id (PHC string encoding). Argon2id can mix in
// a pepper read once from the environment, the same way the root key is
// handled: read, decode, clear the variable.
package password
