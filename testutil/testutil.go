// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pollmall/pollmall/auth"
	"github.com/pollmall/pollmall/cliparse"
	"github.com/pollmall/pollmall/db"
	"github.com/pollmall/pollmall/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// Each call gets its own database; the single connection keeps the shared
// in-memory store alive for the life of the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + auth.NewID() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3418,
		DatabaseURL:   "file:test?mode=memory",
		DatabaseType:  "sqlite",
		JWTSecret:     "test-jwt-secret",
		SessionSecret: "test-session-secret",
	}
}

// TestPassword is the plaintext behind every fixture password hash.
const TestPassword = "password123"

var (
	hashOnce     sync.Once
	passwordHash string
)

// PasswordHash returns a bcrypt hash of TestPassword, computed once because
// bcrypt is deliberately slow.
func PasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := auth.HashPassword(TestPassword)
		if err != nil {
			t.Fatalf("Failed to hash test password: %v", err)
		}
		passwordHash = h
	})
	return passwordHash
}

// CreateTestUser inserts a user and returns it.
func CreateTestUser(t *testing.T, conn *sql.DB, username string, staff bool) models.User {
	t.Helper()

	user := models.User{
		ID:        auth.NewID(),
		Username:  username,
		Staff:     staff,
		CreatedAt: time.Now(),
	}
	_, err := conn.Exec(`
		INSERT INTO app_user (id, username, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Username, PasswordHash(t), user.Staff, user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// UserToken issues an account token for the user under the test config.
func UserToken(t *testing.T, cfg cliparse.Config, user models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(user.ID, user.Username, user.Staff, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}
	return token
}

// PollSpec describes the non-default parts of a fixture poll.
type PollSpec struct {
	Visibility    string // defaults to public
	Draft         bool
	AllowMultiple bool
	Password      string // hashed and stored when set
	StartsAt      *time.Time
	EndsAt        *time.Time
	CategoryID    *string
}

// CreateTestPoll inserts a poll and returns it.
func CreateTestPoll(t *testing.T, conn *sql.DB, creatorID string, spec PollSpec) models.Poll {
	t.Helper()

	if spec.Visibility == "" {
		spec.Visibility = models.VisibilityPublic
	}

	var passwordHash *string
	if spec.Password != "" {
		h, err := auth.HashPassword(spec.Password)
		if err != nil {
			t.Fatalf("Failed to hash poll password: %v", err)
		}
		passwordHash = &h
	}

	now := time.Now()
	poll := models.Poll{
		ID:            auth.NewID(),
		Question:      "Test question?",
		Description:   "A test poll",
		CreatorID:     creatorID,
		CategoryID:    spec.CategoryID,
		Visibility:    spec.Visibility,
		PasswordHash:  passwordHash,
		IsDraft:       spec.Draft,
		AllowMultiple: spec.AllowMultiple,
		PubDate:       now,
		StartsAt:      spec.StartsAt,
		EndsAt:        spec.EndsAt,
		CreatedAt:     now,
	}

	_, err := conn.Exec(`
		INSERT INTO poll (id, question, description, creator_id, category_id, visibility,
		                  password_hash, is_draft, allow_multiple, pub_date, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, poll.ID, poll.Question, poll.Description, poll.CreatorID, poll.CategoryID, poll.Visibility,
		poll.PasswordHash, poll.IsDraft, poll.AllowMultiple, poll.PubDate, poll.StartsAt, poll.EndsAt, poll.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return poll
}

// AddTestChoice adds a choice to a poll and returns the choice ID.
func AddTestChoice(t *testing.T, conn *sql.DB, pollID, text string) string {
	t.Helper()

	choiceID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO choice (id, poll_id, choice_text, votes)
		VALUES ($1, $2, $3, 0)
	`, choiceID, pollID, text)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}

	return choiceID
}

// InviteTestUser adds a user to a private poll's invited set.
func InviteTestUser(t *testing.T, conn *sql.DB, pollID, userID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO poll_invite (poll_id, user_id) VALUES ($1, $2)
	`, pollID, userID)
	if err != nil {
		t.Fatalf("Failed to invite test user: %v", err)
	}
}

// CreateTestComment inserts a comment and returns its ID.
func CreateTestComment(t *testing.T, conn *sql.DB, pollID, userID, body string) string {
	t.Helper()

	commentID := auth.NewID()
	now := time.Now()
	_, err := conn.Exec(`
		INSERT INTO comment (id, poll_id, user_id, body, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
	`, commentID, pollID, userID, body, now, now)
	if err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return commentID
}

// CreateTestCategory inserts a category and returns it.
func CreateTestCategory(t *testing.T, conn *sql.DB, name, slug string) models.Category {
	t.Helper()

	cat := models.Category{ID: auth.NewID(), Name: name, Slug: slug}
	_, err := conn.Exec(`
		INSERT INTO category (id, name, slug, description) VALUES ($1, $2, $3, $4)
	`, cat.ID, cat.Name, cat.Slug, cat.Description)
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	return cat
}

// CountVotes returns the number of ledger rows for a choice.
func CountVotes(t *testing.T, conn *sql.DB, choiceID string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE choice_id = $1`, choiceID).Scan(&n); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// ChoiceCounter returns the denormalized counter value for a choice.
func ChoiceCounter(t *testing.T, conn *sql.DB, choiceID string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT votes FROM choice WHERE id = $1`, choiceID).Scan(&n); err != nil {
		t.Fatalf("Failed to read choice counter: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
