// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared across the
application.

# Domain Types

Core entities matching the database schema:

  - User: account with username and staff flag
  - Poll: question with visibility policy and activation window
  - Choice: selectable option with denormalized vote counter
  - Vote: one ledger row recording a user's selection of a choice
  - Comment: user comment on a poll
  - Category: poll grouping

# Actor

Actor is the request-scoped identity handed to the access evaluator and the
handlers. An unauthenticated request carries the zero Actor. Handlers never
read authentication state from anywhere else.

# Visibility

Polls carry one of three visibility modes:

  - public: anyone may view, authenticated users may vote and comment
  - private: only the creator and invited users
  - password: content gated behind a per-poll password challenge

# JSON Conventions

All types carry explicit json tags. Sensitive fields (password hashes) use
`json:"-"` and are never serialized.
*/
package models
