// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles server configuration from CLI flags and environment
variables.

# Precedence

CLI flags override environment variables, which override defaults:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Settings

Required:

  - DATABASE_URL (-d): database connection string
  - JWT_SECRET (--jwt-secret): secret for signing account tokens
  - SESSION_SECRET (--session-secret): secret for session cookies

Optional:

  - PORT (-p): server port (default: 3418)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)

Secrets should be provided through the environment in production; the flags
exist for development convenience.
*/
package cliparse
