// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/sessions"

	"github.com/pollmall/pollmall/access"
	"github.com/pollmall/pollmall/auth"
	"github.com/pollmall/pollmall/cliparse"
	"github.com/pollmall/pollmall/middleware"
	"github.com/pollmall/pollmall/models"
)

type CommentHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store sessions.Store
}

func NewCommentHandler(db *sql.DB, cfg cliparse.Config, store sessions.Store) *CommentHandler {
	return &CommentHandler{db: db, cfg: cfg, store: store}
}

// AddComment handles POST /polls/:id/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
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
	if err := access.CanComment(poll, invited, actor, grants); err != nil {
		accessErrorResponse(w, err)
		return
	}

	var req models.AddCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Comment text cannot be empty")
		return
	}

	comment := models.Comment{
		ID:        auth.NewID(),
		PollID:    pollID,
		UserID:    actor.ID,
		Body:      body,
		IsEdited:  false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err = h.db.Exec(`
		INSERT INTO comment (id, poll_id, user_id, body, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, comment.ID, comment.PollID, comment.UserID, comment.Body, comment.IsEdited, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		slog.Error("failed to insert comment", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add comment")
		return
	}

	slog.Info("comment added", "poll_id", pollID, "comment_id", comment.ID, "user_id", actor.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CommentView{
		Comment:    comment,
		Username:   actor.Username,
		CreatedAgo: humanize.Time(comment.CreatedAt),
	})
}

// ListComments handles GET /polls/:id/comments
// Comments are poll content: password-protected polls require a grant.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.db.Query(`
		SELECT c.id, c.poll_id, c.user_id, c.body, c.is_edited, c.created_at, c.updated_at, u.username
		FROM comment c
		JOIN app_user u ON u.id = c.user_id
		WHERE c.poll_id = $1
		ORDER BY c.created_at DESC
	`, pollID)
	if err != nil {
		slog.Error("failed to query comments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	views := []models.CommentView{}
	for rows.Next() {
		var c models.Comment
		var username string
		if err := rows.Scan(&c.ID, &c.PollID, &c.UserID, &c.Body, &c.IsEdited, &c.CreatedAt, &c.UpdatedAt, &username); err != nil {
			slog.Error("failed to scan comment", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		views = append(views, models.CommentView{
			Comment:    c,
			Username:   username,
			CreatedAgo: humanize.Time(c.CreatedAt),
		})
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read comments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, views)
}

// EditComment handles PATCH /comments/:id
// Only the author may edit; staff can delete but not rewrite other
// people's words.
func (h *CommentHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	commentID := r.PathValue("id")
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)
	if !actor.Authenticated {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var ownerID string
	err := h.db.QueryRow(`SELECT user_id FROM comment WHERE id = $1`, commentID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Comment not found")
		return
	}
	if err != nil {
		slog.Error("failed to query comment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if ownerID != actor.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "You can only edit your own comments")
		return
	}

	var req models.EditCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Comment text cannot be empty")
		return
	}

	_, err = h.db.Exec(`
		UPDATE comment SET body = $1, is_edited = TRUE, updated_at = $2 WHERE id = $3
	`, body, time.Now(), commentID)
	if err != nil {
		slog.Error("failed to update comment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to edit comment")
		return
	}

	slog.Info("comment edited", "comment_id", commentID, "user_id", actor.ID)

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"edited": true})
}

// DeleteComment handles DELETE /comments/:id
// The owner may delete their own comment; staff may delete anyone's.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := r.PathValue("id")
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)
	if !actor.Authenticated {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var ownerID string
	err := h.db.QueryRow(`SELECT user_id FROM comment WHERE id = $1`, commentID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Comment not found")
		return
	}
	if err != nil {
		slog.Error("failed to query comment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if ownerID != actor.ID && !actor.Staff {
		middleware.ErrorResponse(w, http.StatusForbidden, "You can only delete your own comments")
		return
	}

	if _, err := h.db.Exec(`DELETE FROM comment WHERE id = $1`, commentID); err != nil {
		slog.Error("failed to delete comment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	slog.Info("comment deleted", "comment_id", commentID, "by", actor.ID, "staff", actor.Staff)

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"deleted": true})
}
