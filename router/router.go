// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/pollmall/pollmall/cliparse"
	"github.com/pollmall/pollmall/handlers"
	"github.com/pollmall/pollmall/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	store := middleware.NewSessionStore(cfg.SessionSecret)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg, store)
	votingHandler := handlers.NewVotingHandler(db, cfg, store)
	commentHandler := handlers.NewCommentHandler(db, cfg, store)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /accounts/register", middleware.WithLogging(accountHandler.Register))
	mux.HandleFunc("POST /accounts/login", middleware.WithLogging(accountHandler.Login))

	// Polls
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/password", middleware.WithLogging(pollHandler.SubmitPassword))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(pollHandler.GetResults))

	// Voting
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(votingHandler.CastVote))

	// Comments
	mux.HandleFunc("GET /polls/{id}/comments", middleware.WithLogging(commentHandler.ListComments))
	mux.HandleFunc("POST /polls/{id}/comments", middleware.WithLogging(commentHandler.AddComment))
	mux.HandleFunc("PATCH /comments/{id}", middleware.WithLogging(commentHandler.EditComment))
	mux.HandleFunc("DELETE /comments/{id}", middleware.WithLogging(commentHandler.DeleteComment))

	// Categories
	mux.HandleFunc("GET /categories", middleware.WithLogging(categoryHandler.ListCategories))
	mux.HandleFunc("POST /categories", middleware.WithLogging(categoryHandler.CreateCategory))
	mux.HandleFunc("GET /categories/{slug}/polls", middleware.WithLogging(categoryHandler.GetCategoryPolls))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollmall API v1"))
	})

	return mux
}
