// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/pollmall/pollmall/access"
	"github.com/pollmall/pollmall/cliparse"
	"github.com/pollmall/pollmall/ledger"
	"github.com/pollmall/pollmall/middleware"
	"github.com/pollmall/pollmall/models"
)

type VotingHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store sessions.Store
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, store sessions.Store) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, store: store}
}

// CastVote handles POST /polls/:id/vote
// The access evaluator gates the request; the ledger engine performs the
// mutation. Both the fresh-vote and re-vote paths land here.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
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
	if err := access.CanVote(poll, invited, actor, grants, time.Now()); err != nil {
		accessErrorResponse(w, err)
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	summary, err := ledger.CastVote(h.db, poll, actor.ID, req.ChoiceIDs, time.Now())
	if errors.Is(err, ledger.ErrInvalidSelection) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "You did not select a choice")
		return
	}
	if err != nil {
		slog.Error("failed to cast vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	message := "Your vote has been recorded!"
	status := http.StatusCreated
	if summary.Replaced {
		message = "Your vote has been updated!"
		status = http.StatusOK
	}

	slog.Info("vote cast",
		"poll_id", pollID,
		"user_id", actor.ID,
		"choices_recorded", summary.ChoicesRecorded,
		"replaced", summary.Replaced,
	)

	middleware.JSONResponse(w, status, models.CastVoteResponse{
		ChoicesRecorded: summary.ChoicesRecorded,
		Replaced:        summary.Replaced,
		Message:         message,
	})
}
