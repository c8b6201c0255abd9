// Package middleware provides HTTP middleware for the lending API.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: structured request logging with slog
//   - Recovery: turns panics into a Problem Details 500
//   - CORS: cross-origin policy backed by rs/cors
//   - Compress: gzip for non-streaming responses
//   - RateLimit: token bucket per client host on reserve and cancel
//   - Idempotency: replays the first reserve or cancel response for a
//     repeated Idempotency-Key
//
// Middlewares compose with Chain, outermost first:
//
//	h := middleware.Chain(mux,
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.Recovery,
//	)
//
// # Client Identity
//
// The API has no authentication. Rate limits and idempotency keys are
// scoped by a Clients resolver. By default it keys on the host of the
// socket address, so callers cannot pick their own identity. With
// TrustProxy set it takes the last X-Forwarded-For hop, the one the
// proxy in front of the server appended.
package middleware
