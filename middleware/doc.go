// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides fiber middleware and response helpers.

# Request Logging

RequestLogger logs method, path, status and latency for every request
through the global zerolog logger (see package logger):

	app.Use(middleware.RequestLogger())

# Request IDs

RequestID echoes a caller's X-Request-ID or assigns a random one. Failed
requests are logged with it.

# CORS Middleware

	app.Use(middleware.CORS())

Allows any origin with methods GET, POST, OPTIONS.

# Deadlines and Rate Limits

WithTimeout attaches a deadline to c.UserContext(), which handlers pass to
the engine. SubmitLimiter caps ballot submissions per client IP per minute:

	api.Post("/ballots", middleware.SubmitLimiter(20), handler.SubmitBallot)

# Errors

Engine errors map to a status and a stable reason code:

	not_eligible         403
	position_closed      409
	conflict             409
	invalid_candidate    422
	too_many_selections  422
	position_not_found   404
	storage_failure      503
	timeout              504

RejectionResponse writes that mapping; ErrorHandler is installed as the
fiber ErrorHandler so returned errors render the same way. Storage details
are logged, never returned to the client.

	middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid JSON")

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(c)

Used as the rate-limit key.
*/
package middleware
