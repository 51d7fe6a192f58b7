// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL avoids engine-specific syntax so the same schema runs on PostgreSQL
(production) and SQLite (development, tests).

# Tables

  - app_user: account identity (username, password hash, staff flag)
  - category: poll categories (name, slug)
  - poll: poll metadata, visibility policy, activation window
  - poll_invite: invited users for private polls
  - choice: selectable options with denormalized vote counters
  - vote: the authoritative vote ledger, one row per (user, choice)
  - comment: poll comments

# Relationships

	app_user 1──* poll
	category 1──* poll
	poll 1──* choice
	poll 1──* comment
	poll *──* app_user (via poll_invite)
	choice 1──* vote

All foreign keys cascade on delete, except poll.category_id which is set to
NULL when its category is removed.

# Invariants

The choice.votes counter must equal the count of vote rows referencing that
choice. The ledger package maintains both sides inside one transaction; see
ledger.Reconcile for the consistency backstop.

Single-choice polls hold at most one vote row per (user, poll); this is
enforced by the ledger engine. The UNIQUE (user_id, choice_id) constraint is
the database-level backstop shared by both poll kinds.
*/
package db
