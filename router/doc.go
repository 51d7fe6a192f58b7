// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines all API routes.

Uses Go 1.22+ enhanced routing with method and path parameter matching.

# Route Groups

Accounts:

	POST /accounts/register
	POST /accounts/login

Polls:

	GET  /polls
	POST /polls
	GET  /polls/{id}
	POST /polls/{id}/password
	GET  /polls/{id}/results
	POST /polls/{id}/vote

Comments:

	GET    /polls/{id}/comments
	POST   /polls/{id}/comments
	PATCH  /comments/{id}
	DELETE /comments/{id}

Categories:

	GET  /categories
	POST /categories
	GET  /categories/{slug}/polls

All routes are wrapped with request logging. The session store for password
grants is created here and shared by the handlers that gate poll content.
*/
package router
