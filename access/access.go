// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package access

import (
	"errors"
	"time"

	"github.com/pollmall/pollmall/models"
)

var (
	// ErrAccessDenied means the visibility policy rejects the actor outright.
	ErrAccessDenied = errors.New("access denied")

	// ErrPasswordRequired means the poll is password-protected and the actor
	// holds no grant for it. Metadata stays visible; content does not.
	ErrPasswordRequired = errors.New("password required")

	// ErrNotStarted and ErrEnded mean the actor may access the poll but
	// voting is outside the activation window.
	ErrNotStarted = errors.New("poll not open yet")
	ErrEnded      = errors.New("poll has ended")
)

// Grants records which polls the current session has passed a password
// challenge for, keyed by poll ID. It is built from session state by the
// caller and passed in explicitly so the evaluator stays pure.
type Grants map[string]bool

// CanViewMeta reports whether the actor may see that the poll exists at all:
// its question, visibility mode, and activation window. Password-protected
// polls keep their metadata visible so the challenge can be presented.
func CanViewMeta(p models.Poll, invited []string, a models.Actor) error {
	if p.IsDraft && p.CreatorID != a.ID {
		return ErrAccessDenied
	}
	if p.Visibility == models.VisibilityPrivate {
		if !a.Authenticated {
			return ErrAccessDenied
		}
		if p.CreatorID != a.ID && !contains(invited, a.ID) {
			return ErrAccessDenied
		}
	}
	return nil
}

// CanView reports whether the actor may see the poll's content: its choices,
// results, and comments. Evaluated in policy order: draft, private, password.
func CanView(p models.Poll, invited []string, a models.Actor, g Grants) error {
	if err := CanViewMeta(p, invited, a); err != nil {
		return err
	}
	if p.Visibility == models.VisibilityPassword && p.CreatorID != a.ID && !g[p.ID] {
		return ErrPasswordRequired
	}
	return nil
}

// CanVote reports whether the actor may cast a ballot right now. On top of
// the view policy it requires an authenticated actor and an active poll.
func CanVote(p models.Poll, invited []string, a models.Actor, g Grants, now time.Time) error {
	if !a.Authenticated {
		return ErrAccessDenied
	}
	if err := CanView(p, invited, a, g); err != nil {
		return err
	}
	return IsActive(p, now)
}

// CanComment reports whether the actor may comment. Commenting follows the
// same gates as viewing content, plus authentication; it is not restricted
// by the activation window, so discussion can continue on ended polls.
func CanComment(p models.Poll, invited []string, a models.Actor, g Grants) error {
	if !a.Authenticated {
		return ErrAccessDenied
	}
	return CanView(p, invited, a, g)
}

// IsActive reports whether the poll currently accepts votes. A draft has not
// started; otherwise the optional window bounds apply inclusively.
func IsActive(p models.Poll, now time.Time) error {
	if p.IsDraft {
		return ErrNotStarted
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return ErrNotStarted
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return ErrEnded
	}
	return nil
}

func contains(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
