// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"strings"

	"github.com/pollmall/pollmall/auth"
	"github.com/pollmall/pollmall/models"
)

// CurrentActor resolves the request's identity from the Authorization
// header. A missing, malformed, or expired token yields the anonymous
// actor; endpoints that require authentication check Actor.Authenticated.
func CurrentActor(r *http.Request, jwtSecret string) models.Actor {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return models.Actor{}
	}

	claims, err := auth.ParseToken(strings.TrimPrefix(header, prefix), jwtSecret)
	if err != nil {
		return models.Actor{}
	}

	return models.Actor{
		ID:            claims.Subject,
		Username:      claims.Username,
		Staff:         claims.Staff,
		Authenticated: true,
	}
}
