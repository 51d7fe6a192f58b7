// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Poll Mall API server.

Poll Mall is a polling service: users create polls with choices, cast votes,
comment, and browse results. Polls can be public, invite-only, or gated
behind a password, with an optional activation window controlling when
voting is open.

# Starting the Server

The server reads configuration from environment variables (a .env file is
loaded when present) or CLI flags:

	DATABASE_URL=postgres://... JWT_SECRET=... SESSION_SECRET=... go run main.go

Or with flags:

	go run main.go -p 3418 -d "file:pollmall.db" -t sqlite

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string
  - JWT_SECRET (--jwt-secret): secret for signing account tokens
  - SESSION_SECRET (--session-secret): secret for session cookies

Optional settings:

  - PORT (-p): server port (default: 3418)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (accounts, polls, voting, comments, categories)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, actor identity, session grants
  - access: poll visibility and activation policy
  - ledger: vote records and per-choice counters
  - models: Request/response types
  - auth: password hashing and account tokens
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
