// Package common defines shared constants, sentinel errors and small helpers
// used across the broker. Callers should match errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// ErrInvalidCredentials is returned for an unknown email and for a password
	// mismatch alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOtpNotFoundOrExpired means no unused, unexpired code matched.
	ErrOtpNotFoundOrExpired = errors.New("otp not found or expired")

	// ErrExternalDirectoryUnavailable covers network, timeout and not-found
	// outcomes of the employee directory. It never leaves the gateway.
	ErrExternalDirectoryUnavailable = errors.New("external directory unavailable")

	// ErrSessionIssuance aborts a login; no session is left behind.
	ErrSessionIssuance = errors.New("session issuance failure")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
