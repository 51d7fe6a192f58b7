// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers, password hashing, and account tokens.

# IDs

NewID returns a random UUID string, used as the primary key for every entity.

# Passwords

HashPassword and CheckPassword wrap bcrypt with the default cost. The same
pair serves account passwords and per-poll access passwords; both are stored
as hashes only.

# Tokens

Account identity travels as an HS256-signed JWT:

	token, err := auth.GenerateToken(user.ID, user.Username, user.Staff, cfg.JWTSecret)

ParseToken rejects non-HMAC algorithms, expired tokens, and tokens without a
subject. The middleware package turns a parsed token into a models.Actor.
*/
package auth
