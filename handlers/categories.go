// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pollmall/pollmall/auth"
	"github.com/pollmall/pollmall/cliparse"
	"github.com/pollmall/pollmall/middleware"
	"github.com/pollmall/pollmall/models"
)

type CategoryHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCategoryHandler(db *sql.DB, cfg cliparse.Config) *CategoryHandler {
	return &CategoryHandler{db: db, cfg: cfg}
}

// ListCategories handles GET /categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, name, slug, description FROM category ORDER BY name
	`)
	if err != nil {
		slog.Error("failed to query categories", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &description); err != nil {
			slog.Error("failed to scan category", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read categories", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, categories)
}

// CreateCategory handles POST /categories (staff only)
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)
	if !actor.Authenticated {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !actor.Staff {
		middleware.ErrorResponse(w, http.StatusForbidden, "Staff access required")
		return
	}

	var req models.CreateCategoryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(req.Slug) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	cat := models.Category{
		ID:          auth.NewID(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}

	_, err := h.db.Exec(`
		INSERT INTO category (id, name, slug, description) VALUES ($1, $2, $3, $4)
	`, cat.ID, cat.Name, cat.Slug, cat.Description)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Category slug already exists")
			return
		}
		slog.Error("failed to insert category", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	slog.Info("category created", "slug", cat.Slug, "by", actor.Username)

	middleware.JSONResponse(w, http.StatusCreated, cat)
}

// GetCategoryPolls handles GET /categories/:slug/polls
func (h *CategoryHandler) GetCategoryPolls(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	actor := middleware.CurrentActor(r, h.cfg.JWTSecret)

	var categoryID string
	err := h.db.QueryRow(`SELECT id FROM category WHERE slug = $1`, slug).Scan(&categoryID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		slog.Error("failed to query category", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	items, err := listVisiblePolls(h.db, actor, &categoryID)
	if err != nil {
		slog.Error("failed to list category polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, items)
}
