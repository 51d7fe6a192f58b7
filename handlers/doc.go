// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP API.

# Handlers

  - AccountHandler: registration and login, issuing account tokens
  - PollHandler: poll CRUD, password challenge, results
  - VotingHandler: ballot casting through the ledger engine
  - CommentHandler: comment add/list/edit/delete with moderation
  - CategoryHandler: category listing and browsing

# Flow

Every mutating request follows the same shape: resolve the actor from the
bearer token, load the poll and its invited set, ask the access package for
a verdict, then perform the mutation. Handlers own HTTP status mapping and
logging; policy lives in access, vote bookkeeping in ledger.

# Error Mapping

  - missing entity: 404
  - access denied / password required / not owner: 403
  - poll outside its activation window: 409
  - empty or invalid ballot, blank comment: 400

Error bodies use models.ErrorResponse via middleware.ErrorResponse.
*/
package handlers
