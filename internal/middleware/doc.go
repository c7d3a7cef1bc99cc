// Package middleware provides the HTTP middleware of the ambassador API.
//
// Every request passes through RequestID, Recovery, Logger, Metrics, CORS
// and Compress. Routes behind Auth additionally get RateLimit and
// Idempotency, both keyed by the authenticated ambassador.
//
// # Authentication
//
// Auth validates the bearer token, loads the ambassador and rejects
// unknown or disabled accounts:
//
//	r.Use(middleware.Auth(tokens, ambassadors))
//	r.With(middleware.AdminOnly).Post("/missions", h.Create)
//
// Handlers read the caller back with GetAmbassador and GetAmbassadorID.
// The role is always taken from the stored ambassador, never from the token.
//
// # Idempotency
//
// POST and PUT requests carrying an Idempotency-Key header are answered
// once. Duplicates replay the stored response with X-Idempotency-Replayed
// set, and concurrent duplicates wait for the first one to finish. Server
// errors are not stored.
package middleware
