// Package auth protects the library server with a single owner password.
//
// Two modes are supported, selected with AUTH_MODE:
//
//	AUTH_MODE=none   # default, every request is allowed
//	AUTH_MODE=local  # owner password, session cookie or bearer token
//
// In local mode the bcrypt hash of the owner password and the SHA-256 hash
// of the optional API token live in the settings table. Browser sessions are
// kept by scs (in the SQLite database when available, in memory otherwise)
// and unsafe requests need a gorilla/csrf token, which GET /api/session
// hands out. Requests with a valid bearer token skip the CSRF check.
//
// Local mode settings:
//
//	AUTH_SESSION_SECRET=<hex>       # CSRF key, random per start if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5       # per client IP within AUTH_RATE_LIMIT_WINDOW
//	AUTH_LOCKOUT_DURATION=30m
package auth
