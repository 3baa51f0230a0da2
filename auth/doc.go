// Package auth decides, for every incoming request, whether authentication
// is required and, when it is, who the request belongs to.
//
// A Filter owns the list of exempt paths and one Strategy selected at
// startup. Strategies never panic or return errors for bad input: missing
// headers, bad encodings, unknown users and expired sessions all end up as
// a rejected Decision. The only error that escapes a Strategy is a
// session.StoreUnavailable coming from a persistent backend.
//
// Request flow:
//
//	path exempt?            -> NotRequired
//	credentials presented?  -> no: Rejected(MissingCredentials)
//	principal resolvable?   -> no: Rejected(reason)
//	                        -> Authenticated(principal)
package auth
