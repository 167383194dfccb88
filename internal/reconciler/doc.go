// Package reconciler owns the client's session, favorites and result collections.
//
// A [Reconciler] is the single state owner. Presentation layers call its operations
// and read a copy of the state with [Reconciler.Snapshot]; they may also pass an
// event channel in [Options] to be told when state changes. Sends on that channel
// never block: a full channel drops the event, and readers re-read the snapshot.
//
// # Refresh protocol
//
// After login and after every favorite mutation the reconciler refreshes the
// collections that depend on the session:
//  1. fetch favorites; a 404 means "no favorites" and empties both collections
//  2. with at least one favorite, fetch personal recommendations; a 404 means "none"
//  3. with zero favorites, skip the recommendation call and empty recommendations
//
// Every collection shown to the user is deduplicated by anime id, first entry wins.
//
// # Unauthorized responses
//
// A 401 while loading the identity, refreshing favorites or performing a
// user-initiated mutation ends the session exactly like [Reconciler.Logout].
// Mutations also raise the login prompt; background loads do not.
//
// # Concurrency
//
// Operations may run concurrently (the TUI runs each in its own command).
// The mutex guards field access only. Overlapping operations are not
// sequenced or cancelled: the last response to land wins.
package reconciler
