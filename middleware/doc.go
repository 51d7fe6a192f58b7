// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP plumbing shared by all handlers.

# Request/Response Helpers

  - JSONResponse, ErrorResponse: JSON encoding with status codes
  - ParseJSONBody: request body decoding
  - WithLogging: request start/completion logging via slog
  - CORS: cross-origin headers and preflight handling

# Identity

CurrentActor turns an Authorization bearer token into a models.Actor.
Failures are not errors: an unparseable token is simply an anonymous
request, and each endpoint decides whether anonymity is acceptable.

# Password Grants

Password-protected polls use a session-scoped capability: passing the
challenge once (GrantPassword) marks the poll in the cookie session, and
PasswordGrants rebuilds the access.Grants map on later requests. The grant
is trust-on-first-use for the session's lifetime and is scoped per poll ID.
*/
package middleware
