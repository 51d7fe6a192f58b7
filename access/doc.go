// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package access decides whether an actor may view, vote on, or comment on a
poll.

The evaluator is deliberately pure: it takes the poll, the invited-user list,
the actor, the session's password grants, and (for voting) the current time.
It never touches the database or the clock, which keeps every policy rule
enumerable in unit tests.

# Policy Order

Rules evaluate in a fixed order:

 1. Draft polls are invisible to everyone but their creator.
 2. Private polls admit only the creator and invited users; anonymous
    actors are always denied.
 3. Password-protected polls keep metadata visible but gate content behind
    a per-poll session grant (see Grants). The creator is exempt.
 4. Public polls admit all actors, anonymous included, for viewing.
 5. Voting additionally requires an authenticated actor and an active poll:
    not draft, at or after starts_at, at or before ends_at.

# Grants

A Grant is a capability: proof that the session already passed the poll's
password challenge. The HTTP layer records grants in the cookie session on a
successful challenge and rebuilds the Grants map per request. Passing it in
explicitly, rather than reading ambient session state, keeps the dependency
visible.

# Errors

All verdicts are sentinel errors so callers can map them to responses:
ErrAccessDenied, ErrPasswordRequired, ErrNotStarted, ErrEnded. A nil return
means allowed.
*/
package access
