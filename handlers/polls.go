// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/sessions"

	"github.com/pollmall/pollmall/access"
	"github.com/pollmall/pollmall/auth"
	"github.com/pollmall/pollmall/cliparse"
	"github.com/pollmall/pollmall/ledger"
	"github.com/pollmall/pollmall/middleware"
	"github.com/pollmall/pollmall/models"
)

type PollHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store sessions.Store
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, store sessions.Store) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, store: store}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)
	if !actor.Authenticated {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	choices := make([]string, 0, len(req.Choices))
	for _, c := range req.Choices {
		if t := strings.TrimSpace(c); t != "" {
			choices = append(choices, t)
		}
	}
	if len(choices) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll must have at least 2 choices")
		return
	}

	if req.Visibility == "" {
		req.Visibility = models.VisibilityPublic
	}
	switch req.Visibility {
	case models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityPassword:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "visibility must be public, private, or password")
		return
	}

	var passwordHash *string
	if req.Visibility == models.VisibilityPassword {
		if req.Password == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "password is required for password-protected polls")
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			slog.Error("failed to hash poll password", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
		passwordHash = &hash
	}

	if req.StartsAt != nil && req.EndsAt != nil && !req.StartsAt.Before(*req.EndsAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "starts_at must be before ends_at")
		return
	}

	var categoryID *string
	if req.CategorySlug != "" {
		var id string
		err := h.db.QueryRow(`SELECT id FROM category WHERE slug = $1`, req.CategorySlug).Scan(&id)
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown category")
			return
		}
		if err != nil {
			slog.Error("failed to query category", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		categoryID = &id
	}

	// Resolve invited usernames up front; unknown names are reported, not
	// silently dropped, so private polls do not end up unreachable.
	var invitedIDs []string
	if req.Visibility == models.VisibilityPrivate {
		for _, username := range req.Invited {
			var id string
			err := h.db.QueryRow(`SELECT id FROM app_user WHERE username = $1`, username).Scan(&id)
			if err == sql.ErrNoRows {
				middleware.ErrorResponse(w, http.StatusBadRequest, "unknown invited user: "+username)
				return
			}
			if err != nil {
				slog.Error("failed to resolve invited user", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
				return
			}
			invitedIDs = append(invitedIDs, id)
		}
	}

	pollID := auth.NewID()
	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll (id, question, description, creator_id, category_id, visibility,
		                  password_hash, is_draft, allow_multiple, pub_date, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, pollID, req.Question, req.Description, actor.ID, categoryID, req.Visibility,
		passwordHash, req.IsDraft, req.AllowMultiple, now, req.StartsAt, req.EndsAt, now)
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for _, text := range choices {
		_, err := tx.Exec(`
			INSERT INTO choice (id, poll_id, choice_text, votes) VALUES ($1, $2, $3, 0)
		`, auth.NewID(), pollID, text)
		if err != nil {
			slog.Error("failed to insert choice", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	for _, userID := range invitedIDs {
		_, err := tx.Exec(`
			INSERT INTO poll_invite (poll_id, user_id) VALUES ($1, $2)
		`, pollID, userID)
		if err != nil && !isUniqueViolation(err) {
			slog.Error("failed to insert invite", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", pollID, "creator", actor.Username, "visibility", req.Visibility)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{PollID: pollID})
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)

	items, err := listVisiblePolls(h.db, actor, nil)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, items)
}

// GetPoll handles GET /polls/:id
// Password-protected polls return metadata with password_required set until
// the session passes the challenge; the choices stay hidden.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)

	poll, err := loadPoll(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	invited, err := loadInvited(h.db, pollID)
	if err != nil {
		slog.Error("failed to query invites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := access.CanViewMeta(poll, invited, actor); err != nil {
		accessErrorResponse(w, err)
		return
	}

	detail := models.PollDetail{
		Poll:         poll,
		PublishedAgo: humanize.Time(poll.PubDate),
	}

	if err := h.db.QueryRow(`
		SELECT COUNT(*) FROM comment WHERE poll_id = $1
	`, pollID).Scan(&detail.CommentCount); err != nil {
		slog.Error("failed to count comments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	grants := middleware.PasswordGrants(h.store, r)
	if err := access.CanView(poll, invited, actor, grants); err != nil {
		if errors.Is(err, access.ErrPasswordRequired) {
			detail.PasswordRequired = true
			middleware.JSONResponse(w, http.StatusOK, detail)
			return
		}
		accessErrorResponse(w, err)
		return
	}

	choices, err := loadChoices(h.db, pollID)
	if err != nil {
		slog.Error("failed to query choices", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	detail.Choices = choices

	mine, err := myChoiceIDs(h.db, pollID, actor)
	if err != nil {
		slog.Error("failed to query actor votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	detail.MyChoiceIDs = mine

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// SubmitPassword handles POST /polls/:id/password
// A correct password records a session-scoped grant; the challenge is not
// re-validated on later requests.
func (h *PollHandler) SubmitPassword(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	poll, err := loadPoll(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if poll.Visibility != models.VisibilityPassword {
		middleware.ErrorResponse(w, http.StatusConflict, "Poll is not password-protected")
		return
	}
	if poll.PasswordHash == nil {
		slog.Error("password poll without hash", "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Poll misconfigured")
		return
	}

	var req models.PasswordChallengeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.CheckPassword(*poll.PasswordHash, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Incorrect password")
		return
	}

	if err := middleware.GrantPassword(h.store, w, r, pollID); err != nil {
		slog.Error("failed to save session grant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record challenge")
		return
	}

	slog.Info("password challenge passed", "poll_id", pollID)

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"verified": true})
}

// GetResults handles GET /polls/:id/results
func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)

	poll, err := loadPoll(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	invited, err := loadInvited(h.db, pollID)
	if err != nil {
		slog.Error("failed to query invites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	grants := middleware.PasswordGrants(h.store, r)
	if err := access.CanView(poll, invited, actor, grants); err != nil {
		accessErrorResponse(w, err)
		return
	}

	results, total, err := ledger.Tally(h.db, pollID)
	if err != nil {
		slog.Error("failed to tally poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Consistency backstop for the denormalized counters.
	if drifted, err := ledger.Reconcile(h.db, pollID); err != nil {
		slog.Error("failed to reconcile counters", "error", err)
	} else if len(drifted) > 0 {
		slog.Warn("vote counter drift detected", "poll_id", pollID, "choices", drifted)
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResults{
		Poll:       poll,
		Results:    results,
		TotalVotes: total,
	})
}

// listVisiblePolls loads candidate polls (optionally restricted to one
// category) and filters them with the metadata visibility predicate.
func listVisiblePolls(db *sql.DB, actor models.Actor, categoryID *string) ([]models.PollListItem, error) {
	query := `
		SELECT id, question, description, creator_id, category_id, visibility,
		       password_hash, is_draft, allow_multiple, pub_date, starts_at, ends_at, created_at
		FROM poll`
	args := []interface{}{}
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY pub_date DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []models.Poll
	for rows.Next() {
		var p models.Poll
		var description sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Question, &description, &p.CreatorID, &p.CategoryID, &p.Visibility,
			&p.PasswordHash, &p.IsDraft, &p.AllowMultiple, &p.PubDate, &p.StartsAt, &p.EndsAt, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.Description = description.String
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	invitedPolls := map[string]bool{}
	votes := map[string][]string{}
	if actor.Authenticated {
		inviteRows, err := db.Query(`SELECT poll_id FROM poll_invite WHERE user_id = $1`, actor.ID)
		if err != nil {
			return nil, err
		}
		defer inviteRows.Close()
		for inviteRows.Next() {
			var pollID string
			if err := inviteRows.Scan(&pollID); err != nil {
				return nil, err
			}
			invitedPolls[pollID] = true
		}
		if err := inviteRows.Err(); err != nil {
			return nil, err
		}

		voteRows, err := db.Query(`SELECT poll_id, choice_id FROM vote WHERE user_id = $1`, actor.ID)
		if err != nil {
			return nil, err
		}
		defer voteRows.Close()
		for voteRows.Next() {
			var pollID, choiceID string
			if err := voteRows.Scan(&pollID, &choiceID); err != nil {
				return nil, err
			}
			votes[pollID] = append(votes[pollID], choiceID)
		}
		if err := voteRows.Err(); err != nil {
			return nil, err
		}
	}

	items := []models.PollListItem{}
	for _, p := range polls {
		var invited []string
		if invitedPolls[p.ID] {
			invited = []string{actor.ID}
		}
		if err := access.CanViewMeta(p, invited, actor); err != nil {
			continue
		}

		var choiceCount int
		if err := db.QueryRow(`SELECT COUNT(*) FROM choice WHERE poll_id = $1`, p.ID).Scan(&choiceCount); err != nil {
			return nil, err
		}

		items = append(items, models.PollListItem{
			Poll:         p,
			ChoiceCount:  choiceCount,
			MyChoiceIDs:  votes[p.ID],
			PublishedAgo: humanize.Time(p.PubDate),
		})
	}

	return items, nil
}
