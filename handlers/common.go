// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pollmall/pollmall/access"
	"github.com/pollmall/pollmall/middleware"
	"github.com/pollmall/pollmall/models"
)

// loadPoll fetches one poll by ID. Returns sql.ErrNoRows untouched so
// callers can map it to 404.
func loadPoll(db *sql.DB, pollID string) (models.Poll, error) {
	var p models.Poll
	var description sql.NullString
	err := db.QueryRow(`
		SELECT id, question, description, creator_id, category_id, visibility,
		       password_hash, is_draft, allow_multiple, pub_date, starts_at, ends_at, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&p.ID, &p.Question, &description, &p.CreatorID, &p.CategoryID, &p.Visibility,
		&p.PasswordHash, &p.IsDraft, &p.AllowMultiple, &p.PubDate, &p.StartsAt, &p.EndsAt, &p.CreatedAt,
	)
	if err != nil {
		return models.Poll{}, err
	}
	p.Description = description.String
	return p, nil
}

// loadInvited returns the invited user IDs for a poll.
func loadInvited(db *sql.DB, pollID string) ([]string, error) {
	rows, err := db.Query(`SELECT user_id FROM poll_invite WHERE poll_id = $1`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invites: %w", err)
	}
	defer rows.Close()

	var invited []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invited = append(invited, id)
	}
	return invited, rows.Err()
}

// loadChoices returns a poll's choices in insertion order.
func loadChoices(db *sql.DB, pollID string) ([]models.Choice, error) {
	rows, err := db.Query(`
		SELECT id, poll_id, choice_text, votes
		FROM choice
		WHERE poll_id = $1
		ORDER BY id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices: %w", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.PollID, &c.ChoiceText, &c.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

// myChoiceIDs returns the choice IDs the actor currently holds ledger rows
// for in this poll. Empty for anonymous actors.
func myChoiceIDs(db *sql.DB, pollID string, actor models.Actor) ([]string, error) {
	if !actor.Authenticated {
		return nil, nil
	}

	rows, err := db.Query(`
		SELECT choice_id FROM vote WHERE poll_id = $1 AND user_id = $2
	`, pollID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actor votes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan actor vote: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// accessErrorResponse maps evaluator verdicts onto HTTP responses.
func accessErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrPasswordRequired):
		middleware.ErrorResponse(w, http.StatusForbidden, "Password required for this poll")
	case errors.Is(err, access.ErrAccessDenied):
		middleware.ErrorResponse(w, http.StatusForbidden, "You do not have access to this poll")
	case errors.Is(err, access.ErrNotStarted):
		middleware.ErrorResponse(w, http.StatusConflict, "Poll is not open for voting yet")
	case errors.Is(err, access.ErrEnded):
		middleware.ErrorResponse(w, http.StatusConflict, "Voting has ended; see the results")
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Access check failed")
	}
}

// isUniqueViolation recognizes unique-constraint errors from both supported
// drivers without depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
