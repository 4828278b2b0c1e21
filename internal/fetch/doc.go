// Package fetch wraps one remote HTTP endpoint with loading, error and
// cancellation state.
//
// # Overview
//
// A Client is bound to a single Endpoint (URL, default method, default
// headers). Screens that show remote data attach a Client when they open and
// detach it when they close. The Client exposes a State snapshot plus two
// operations, Post and Refetch, that drive new attempts.
//
// # Lifecycle
//
//	New ──> Attach ──> (Post | Refetch)* ──> Detach
//
//   - Attach on a GET (or method-less) endpoint issues exactly one request
//     in the background and sets Loading=true before returning.
//   - Attach on any other method issues nothing and sets Loading=false.
//   - Detach cancels everything in flight. Completions that arrive after
//     Detach never touch the state.
//
// # State
//
// Every attempt begins by setting Loading=true and clearing Error, leaving
// Data as it was so a screen can keep showing stale data while the fresh
// copy loads. When the attempt settles:
//
//   - success stores the decoded value in Data and clears Error
//   - failure clears Data and stores the message in Error
//   - cancellation changes nothing
//
// # Decoding
//
//   - 204 No Content settles with Data=nil and no error
//   - any status outside 200-299 becomes an *HTTPError whose message is
//     "401 Unauthorized" or "400 Bad Request – <body>"
//   - a Content-Type containing application/json is unmarshalled into T
//   - anything else is text, accepted when T is string, any, []byte or an
//     encoding.TextUnmarshaler
//
// # Errors
//
//   - *HTTPError: the server answered with a failure status
//   - *TransportError: no response (DNS, refused connection, timeout)
//   - *DecodeError: a 2xx body that could not be decoded
//
// Cancellation is not an error. Post returns (nil, nil) for a cancelled
// attempt.
//
// # Ordering
//
// Overlapping attempts are not serialized. By default the last attempt to
// settle wins. WithLatestOnly drops completions from attempts that were
// superseded by a newer one.
package fetch
