// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pollmall/pollmall/cliparse"
	"github.com/pollmall/pollmall/ledger"
	"github.com/pollmall/pollmall/middleware"
	"github.com/pollmall/pollmall/models"
	"github.com/pollmall/pollmall/testutil"
)

// authHeader builds the Authorization header for a fixture user.
func authHeader(t *testing.T, cfg cliparse.Config, user models.User) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + testutil.UserToken(t, cfg, user)}
}

func newPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return NewPollHandler(db, cfg, middleware.NewSessionStore(cfg.SessionSecret))
}

func TestCreatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := newPollHandler(db, cfg)

	creator := testutil.CreateTestUser(t, db, "alice", false)
	testutil.CreateTestUser(t, db, "ivy", false)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name           string
		headers        map[string]string
		requestBody    models.CreatePollRequest
		expectedStatus int
	}{
		{
			name:    "valid public poll",
			headers: authHeader(t, cfg, creator),
			requestBody: models.CreatePollRequest{
				Question: "Tabs or spaces?",
				Choices:  []string{"Tabs", "Spaces"},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "anonymous denied",
			headers:        nil,
			requestBody:    models.CreatePollRequest{Question: "Q?", Choices: []string{"A", "B"}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing question",
			headers:        authHeader(t, cfg, creator),
			requestBody:    models.CreatePollRequest{Choices: []string{"A", "B"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "too few choices",
			headers:        authHeader(t, cfg, creator),
			requestBody:    models.CreatePollRequest{Question: "Q?", Choices: []string{"A", "  "}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "password visibility without password",
			headers: authHeader(t, cfg, creator),
			requestBody: models.CreatePollRequest{
				Question:   "Q?",
				Choices:    []string{"A", "B"},
				Visibility: models.VisibilityPassword,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "window start after end",
			headers: authHeader(t, cfg, creator),
			requestBody: models.CreatePollRequest{
				Question: "Q?",
				Choices:  []string{"A", "B"},
				StartsAt: &future,
				EndsAt:   &past,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "unknown invited user",
			headers: authHeader(t, cfg, creator),
			requestBody: models.CreatePollRequest{
				Question:   "Q?",
				Choices:    []string{"A", "B"},
				Visibility: models.VisibilityPrivate,
				Invited:    []string{"ghost"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "private poll with invites",
			headers: authHeader(t, cfg, creator),
			requestBody: models.CreatePollRequest{
				Question:   "Private?",
				Choices:    []string{"Yes", "No"},
				Visibility: models.VisibilityPrivate,
				Invited:    []string{"ivy"},
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls", tt.requestBody, tt.headers)
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.CreatePollResponse
			testutil.AssertJSON(t, w, &resp)

			var choiceCount int
			if err := db.QueryRow(`SELECT COUNT(*) FROM choice WHERE poll_id = $1`, resp.PollID).Scan(&choiceCount); err != nil {
				t.Fatal(err)
			}
			if choiceCount != 2 {
				t.Errorf("choices inserted = %d, want 2", choiceCount)
			}

			if tt.requestBody.Visibility == models.VisibilityPrivate {
				var inviteCount int
				if err := db.QueryRow(`SELECT COUNT(*) FROM poll_invite WHERE poll_id = $1`, resp.PollID).Scan(&inviteCount); err != nil {
					t.Fatal(err)
				}
				if inviteCount != 1 {
					t.Errorf("invites inserted = %d, want 1", inviteCount)
				}
			}
		})
	}
}

func TestGetPoll_Visibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := newPollHandler(db, cfg)

	creator := testutil.CreateTestUser(t, db, "creator", false)
	guest := testutil.CreateTestUser(t, db, "guest", false)
	invitee := testutil.CreateTestUser(t, db, "invitee", false)

	draft := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{Draft: true})
	private := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{Visibility: models.VisibilityPrivate})
	testutil.InviteTestUser(t, db, private.ID, invitee.ID)
	public := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{})
	testutil.AddTestChoice(t, db, public.ID, "A")
	testutil.AddTestChoice(t, db, public.ID, "B")

	tests := []struct {
		name           string
		pollID         string
		headers        map[string]string
		expectedStatus int
	}{
		{"draft hidden from guest", draft.ID, authHeader(t, cfg, guest), http.StatusForbidden},
		{"draft visible to creator", draft.ID, authHeader(t, cfg, creator), http.StatusOK},
		{"private denies anonymous", private.ID, nil, http.StatusForbidden},
		{"private denies uninvited", private.ID, authHeader(t, cfg, guest), http.StatusForbidden},
		{"private allows invited", private.ID, authHeader(t, cfg, invitee), http.StatusOK},
		{"public allows anonymous", public.ID, nil, http.StatusOK},
		{"missing poll", "nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/polls/"+tt.pollID, nil, tt.headers)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.GetPoll(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestGetPoll_PasswordGatesContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := newPollHandler(db, cfg)

	creator := testutil.CreateTestUser(t, db, "creator", false)
	guest := testutil.CreateTestUser(t, db, "guest", false)
	poll := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{
		Visibility: models.VisibilityPassword,
		Password:   "open sesame",
	})
	testutil.AddTestChoice(t, db, poll.ID, "A")
	testutil.AddTestChoice(t, db, poll.ID, "B")

	// Without a grant: metadata only
	req := testutil.MakeRequest("GET", "/polls/"+poll.ID, nil, authHeader(t, cfg, guest))
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	handler.GetPoll(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var detail models.PollDetail
	testutil.AssertJSON(t, w, &detail)
	if !detail.PasswordRequired {
		t.Error("expected password_required to be set")
	}
	if len(detail.Choices) != 0 {
		t.Errorf("choices leaked through password gate: %v", detail.Choices)
	}
	if detail.Poll.Question == "" {
		t.Error("metadata should stay visible for password polls")
	}

	// The creator sees content without any challenge
	req = testutil.MakeRequest("GET", "/polls/"+poll.ID, nil, authHeader(t, cfg, creator))
	req.SetPathValue("id", poll.ID)
	w = httptest.NewRecorder()
	handler.GetPoll(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	detail = models.PollDetail{}
	testutil.AssertJSON(t, w, &detail)
	if detail.PasswordRequired {
		t.Error("creator should not be challenged")
	}
	if len(detail.Choices) != 2 {
		t.Errorf("creator sees %d choices, want 2", len(detail.Choices))
	}
}

func TestListPolls_FiltersByVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := newPollHandler(db, cfg)

	creator := testutil.CreateTestUser(t, db, "creator", false)
	invitee := testutil.CreateTestUser(t, db, "invitee", false)

	public := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{})
	testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{Draft: true})
	private := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{Visibility: models.VisibilityPrivate})
	testutil.InviteTestUser(t, db, private.ID, invitee.ID)
	protected := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{
		Visibility: models.VisibilityPassword,
		Password:   "pw",
	})

	listFor := func(headers map[string]string) map[string]bool {
		req := testutil.MakeRequest("GET", "/polls", nil, headers)
		w := httptest.NewRecorder()
		handler.ListPolls(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var items []models.PollListItem
		testutil.AssertJSON(t, w, &items)
		ids := map[string]bool{}
		for _, it := range items {
			ids[it.Poll.ID] = true
		}
		return ids
	}

	// Anonymous: public and password metadata, no draft, no private
	ids := listFor(nil)
	if !ids[public.ID] || !ids[protected.ID] {
		t.Errorf("anonymous listing missing public/password polls: %v", ids)
	}
	if ids[private.ID] {
		t.Error("anonymous listing leaked a private poll")
	}
	if len(ids) != 2 {
		t.Errorf("anonymous listing has %d polls, want 2", len(ids))
	}

	// Invited user additionally sees the private poll
	ids = listFor(authHeader(t, cfg, invitee))
	if !ids[private.ID] {
		t.Error("invited user cannot see the private poll")
	}

	// Creator sees everything, drafts included
	ids = listFor(authHeader(t, cfg, creator))
	if len(ids) != 4 {
		t.Errorf("creator listing has %d polls, want 4", len(ids))
	}
}

func TestGetResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := newPollHandler(db, cfg)

	creator := testutil.CreateTestUser(t, db, "creator", false)
	poll := testutil.CreateTestPoll(t, db, creator.ID, testutil.PollSpec{})
	red := testutil.AddTestChoice(t, db, poll.ID, "Red")
	blue := testutil.AddTestChoice(t, db, poll.ID, "Blue")

	for _, name := range []string{"u1", "u2", "u3"} {
		u := testutil.CreateTestUser(t, db, name, false)
		if _, err := ledger.CastVote(db, poll, u.ID, []string{red}, time.Now()); err != nil {
			t.Fatalf("CastVote() error = %v", err)
		}
	}

	req := testutil.MakeRequest("GET", "/polls/"+poll.ID+"/results", nil, nil)
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	handler.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PollResults
	testutil.AssertJSON(t, w, &resp)
	if resp.TotalVotes != 3 {
		t.Errorf("total_votes = %d, want 3", resp.TotalVotes)
	}

	byID := map[string]models.ChoiceResult{}
	for _, r := range resp.Results {
		byID[r.ChoiceID] = r
	}
	if byID[red].Percentage != 100.0 {
		t.Errorf("red percentage = %v, want 100.0", byID[red].Percentage)
	}
	if byID[blue].Percentage != 0 {
		t.Errorf("blue percentage = %v, want 0", byID[blue].Percentage)
	}
}
