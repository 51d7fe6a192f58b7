// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger maintains the authoritative vote records and the denormalized
per-choice counters.

# The Ledger

Every cast ballot becomes rows in the vote table: one row per (user, choice).
Single-choice polls hold at most one row per (user, poll); multi-choice polls
hold one row per selected choice. The choice.votes counter is a denormalized
copy of the per-choice row count, kept for cheap result reads.

# CastVote

CastVote is the only writer. It runs one transaction per ballot:

  - single-choice: insert, move (decrement old counter, swap row, increment
    new counter), or no-op when the choice is unchanged
  - multi-choice: replace-all - delete every previous row (decrementing
    counters), insert one row per distinct valid submitted choice

Counter updates are relative (votes = votes + 1) so concurrent ballots from
different users never lose increments; the ledger row and its counter change
always commit or roll back together.

# Reads

Tally returns per-choice counts and percentages from the counters.
VotePercentage rounds to one decimal and defines 0 for an empty poll.
Reconcile re-derives counts from the ledger and reports drifted choices;
the results handler logs any drift it finds.
*/
package ledger
