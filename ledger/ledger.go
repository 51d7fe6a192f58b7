// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pollmall/pollmall/auth"
	"github.com/pollmall/pollmall/models"
)

// ErrInvalidSelection means no usable choice was submitted: an empty ballot,
// or (for single-choice polls) a choice that does not belong to the poll.
var ErrInvalidSelection = errors.New("no valid choice selected")

// Summary reports what a successful CastVote recorded.
type Summary struct {
	ChoicesRecorded int
	Replaced        bool
}

// CastVote records the actor's ballot for the poll inside one transaction,
// keeping choice counters equal to the ledger at every commit point.
//
// Single-choice polls keep exactly one ledger row per (actor, poll): a new
// vote inserts, a changed vote moves the row and both counters, a repeat
// vote is a no-op. Multi-choice polls use replace-all semantics: every
// previous row for the actor is removed, then one row per distinct submitted
// choice is inserted. Choice IDs that do not belong to the poll are dropped
// silently on multi-choice polls and are not counted in the summary.
//
// Access control must have been checked by the caller; CastVote only
// validates the selection itself.
func CastVote(db *sql.DB, poll models.Poll, actorID string, choiceIDs []string, now time.Time) (Summary, error) {
	if len(choiceIDs) == 0 {
		return Summary{}, ErrInvalidSelection
	}

	tx, err := db.Begin()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	valid, err := pollChoiceSet(tx, poll.ID)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	if poll.AllowMultiple {
		summary, err = castMulti(tx, poll.ID, actorID, choiceIDs, valid, now)
	} else {
		summary, err = castSingle(tx, poll.ID, actorID, choiceIDs[0], valid, now)
	}
	if err != nil {
		return Summary{}, err
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("failed to commit vote: %w", err)
	}
	return summary, nil
}

// castSingle handles polls where one choice is expected. Extra submitted IDs
// are ignored; only the first is considered.
func castSingle(tx *sql.Tx, pollID, actorID, choiceID string, valid map[string]bool, now time.Time) (Summary, error) {
	if !valid[choiceID] {
		return Summary{}, ErrInvalidSelection
	}

	var existingID, existingChoice string
	err := tx.QueryRow(`
		SELECT id, choice_id FROM vote WHERE user_id = $1 AND poll_id = $2
	`, actorID, pollID).Scan(&existingID, &existingChoice)

	switch {
	case err == sql.ErrNoRows:
		if err := insertVote(tx, pollID, actorID, choiceID, now); err != nil {
			return Summary{}, err
		}
		return Summary{ChoicesRecorded: 1, Replaced: false}, nil

	case err != nil:
		return Summary{}, fmt.Errorf("failed to look up existing vote: %w", err)

	case existingChoice == choiceID:
		// Re-affirming the same choice: no ledger or counter change.
		return Summary{ChoicesRecorded: 1, Replaced: true}, nil

	default:
		if err := adjustCounter(tx, existingChoice, -1); err != nil {
			return Summary{}, err
		}
		if _, err := tx.Exec(`DELETE FROM vote WHERE id = $1`, existingID); err != nil {
			return Summary{}, fmt.Errorf("failed to delete old vote: %w", err)
		}
		if err := insertVote(tx, pollID, actorID, choiceID, now); err != nil {
			return Summary{}, err
		}
		return Summary{ChoicesRecorded: 1, Replaced: true}, nil
	}
}

// castMulti replaces the actor's entire ballot for the poll.
func castMulti(tx *sql.Tx, pollID, actorID string, choiceIDs []string, valid map[string]bool, now time.Time) (Summary, error) {
	rows, err := tx.Query(`
		SELECT choice_id FROM vote WHERE user_id = $1 AND poll_id = $2
	`, actorID, pollID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load existing votes: %w", err)
	}
	defer rows.Close()

	var previous []string
	for rows.Next() {
		var choiceID string
		if err := rows.Scan(&choiceID); err != nil {
			return Summary{}, fmt.Errorf("failed to scan existing vote: %w", err)
		}
		previous = append(previous, choiceID)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("failed to read existing votes: %w", err)
	}

	for _, choiceID := range previous {
		if err := adjustCounter(tx, choiceID, -1); err != nil {
			return Summary{}, err
		}
	}
	if _, err := tx.Exec(`
		DELETE FROM vote WHERE user_id = $1 AND poll_id = $2
	`, actorID, pollID); err != nil {
		return Summary{}, fmt.Errorf("failed to clear old votes: %w", err)
	}

	recorded := 0
	seen := make(map[string]bool, len(choiceIDs))
	for _, choiceID := range choiceIDs {
		if seen[choiceID] {
			continue
		}
		seen[choiceID] = true
		// Unknown IDs are skipped silently rather than failing the ballot.
		if !valid[choiceID] {
			continue
		}
		if err := insertVote(tx, pollID, actorID, choiceID, now); err != nil {
			return Summary{}, err
		}
		recorded++
	}

	return Summary{ChoicesRecorded: recorded, Replaced: len(previous) > 0}, nil
}

func insertVote(tx *sql.Tx, pollID, actorID, choiceID string, now time.Time) error {
	if _, err := tx.Exec(`
		INSERT INTO vote (id, user_id, poll_id, choice_id, voted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, auth.NewID(), actorID, pollID, choiceID, now); err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return adjustCounter(tx, choiceID, +1)
}

// adjustCounter applies an atomic relative update so concurrent transactions
// never overwrite each other's counts.
func adjustCounter(tx *sql.Tx, choiceID string, delta int) error {
	if _, err := tx.Exec(`
		UPDATE choice SET votes = votes + $1 WHERE id = $2
	`, delta, choiceID); err != nil {
		return fmt.Errorf("failed to adjust vote counter: %w", err)
	}
	return nil
}

func pollChoiceSet(tx *sql.Tx, pollID string) (map[string]bool, error) {
	rows, err := tx.Query(`SELECT id FROM choice WHERE poll_id = $1`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll choices: %w", err)
	}
	defer rows.Close()

	valid := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		valid[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read poll choices: %w", err)
	}
	return valid, nil
}

// VotePercentage returns the share of total held by votes, rounded to one
// decimal place. Zero when the poll has no votes at all.
func VotePercentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*1000) / 10
}

// Tally returns the per-choice results for a poll from the denormalized
// counters, with percentages computed over the poll-wide total.
func Tally(db *sql.DB, pollID string) ([]models.ChoiceResult, int, error) {
	rows, err := db.Query(`
		SELECT id, choice_text, votes
		FROM choice
		WHERE poll_id = $1
		ORDER BY id
	`, pollID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tally: %w", err)
	}
	defer rows.Close()

	results := []models.ChoiceResult{}
	total := 0
	for rows.Next() {
		var r models.ChoiceResult
		if err := rows.Scan(&r.ChoiceID, &r.ChoiceText, &r.Votes); err != nil {
			return nil, 0, fmt.Errorf("failed to scan tally row: %w", err)
		}
		total += r.Votes
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read tally: %w", err)
	}

	for i := range results {
		results[i].Percentage = VotePercentage(results[i].Votes, total)
	}
	return results, total, nil
}

// Reconcile compares each choice counter against the authoritative ledger
// count and returns the IDs of drifted choices. An empty result means the
// counter invariant holds for the poll.
func Reconcile(db *sql.DB, pollID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT c.id
		FROM choice c
		LEFT JOIN vote v ON v.choice_id = c.id
		WHERE c.poll_id = $1
		GROUP BY c.id, c.votes
		HAVING c.votes <> COUNT(v.id)
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile counters: %w", err)
	}
	defer rows.Close()

	var drifted []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan drifted choice: %w", err)
		}
		drifted = append(drifted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reconciliation: %w", err)
	}
	return drifted, nil
}
