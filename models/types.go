package models

import "time"

// Poll visibility constants
const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityPassword = "password"
)

// Actor is the authenticated-or-anonymous identity attached to a request.
// The zero value is an anonymous actor.
type Actor struct {
	ID            string
	Username      string
	Staff         bool
	Authenticated bool
}

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Question      string     `json:"question"`
	Description   string     `json:"description"`
	Choices       []string   `json:"choices"`
	Visibility    string     `json:"visibility"`
	Password      string     `json:"password,omitempty"`
	IsDraft       bool       `json:"is_draft"`
	AllowMultiple bool       `json:"allow_multiple"`
	CategorySlug  string     `json:"category_slug,omitempty"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	Invited       []string   `json:"invited,omitempty"` // usernames, private polls only
}

type PasswordChallengeRequest struct {
	Password string `json:"password"`
}

type CastVoteRequest struct {
	ChoiceIDs []string `json:"choice_ids"`
}

type AddCommentRequest struct {
	Body string `json:"body"`
}

type EditCommentRequest struct {
	Body string `json:"body"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Response types

type TokenResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type PollDetail struct {
	Poll             Poll     `json:"poll"`
	Choices          []Choice `json:"choices,omitempty"`
	MyChoiceIDs      []string `json:"my_choice_ids,omitempty"`
	PasswordRequired bool     `json:"password_required,omitempty"`
	PublishedAgo     string   `json:"published_ago"`
	CommentCount     int      `json:"comment_count"`
}

type PollListItem struct {
	Poll         Poll     `json:"poll"`
	ChoiceCount  int      `json:"choice_count"`
	MyChoiceIDs  []string `json:"my_choice_ids,omitempty"`
	PublishedAgo string   `json:"published_ago"`
}

type CastVoteResponse struct {
	ChoicesRecorded int    `json:"choices_recorded"`
	Replaced        bool   `json:"replaced"`
	Message         string `json:"message"`
}

type PollResults struct {
	Poll       Poll           `json:"poll"`
	Results    []ChoiceResult `json:"results"`
	TotalVotes int            `json:"total_votes"`
}

type CommentView struct {
	Comment    Comment `json:"comment"`
	Username   string  `json:"username"`
	CreatedAgo string  `json:"created_ago"`
}

// Domain types

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Staff     bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

type Poll struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Description   string     `json:"description"`
	CreatorID     string     `json:"creator_id"`
	CategoryID    *string    `json:"category_id,omitempty"`
	Visibility    string     `json:"visibility"`
	PasswordHash  *string    `json:"-"` // Never expose in JSON
	IsDraft       bool       `json:"is_draft"`
	AllowMultiple bool       `json:"allow_multiple"`
	PubDate       time.Time  `json:"pub_date"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Choice struct {
	ID         string `json:"id"`
	PollID     string `json:"poll_id"`
	ChoiceText string `json:"choice_text"`
	Votes      int    `json:"votes"`
}

type Vote struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	PollID   string    `json:"poll_id"`
	ChoiceID string    `json:"choice_id"`
	VotedAt  time.Time `json:"voted_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	IsEdited  bool      `json:"is_edited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// ChoiceResult is one row of a poll tally.
type ChoiceResult struct {
	ChoiceID   string  `json:"choice_id"`
	ChoiceText string  `json:"choice_text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
