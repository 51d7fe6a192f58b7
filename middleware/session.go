// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/pollmall/pollmall/access"
)

// SessionName is the cookie under which password grants are stored.
const SessionName = "pollmall_session"

const grantPrefix = "pwgrant:"

// NewSessionStore builds the cookie-session store for password grants.
func NewSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// PasswordGrants rebuilds the session's capability map: which polls this
// session has already passed a password challenge for. An unreadable or
// absent session simply yields no grants.
func PasswordGrants(store sessions.Store, r *http.Request) access.Grants {
	session, _ := store.Get(r, SessionName)

	grants := access.Grants{}
	for k, v := range session.Values {
		key, ok := k.(string)
		if !ok || !strings.HasPrefix(key, grantPrefix) {
			continue
		}
		if granted, ok := v.(bool); ok && granted {
			grants[strings.TrimPrefix(key, grantPrefix)] = true
		}
	}
	return grants
}

// GrantPassword records a passed challenge for the poll in the session.
// Trust-on-first-use: the grant holds for the rest of the session without
// re-validation.
func GrantPassword(store sessions.Store, w http.ResponseWriter, r *http.Request, pollID string) error {
	session, _ := store.Get(r, SessionName)
	session.Values[grantPrefix+pollID] = true
	return session.Save(r, w)
}
