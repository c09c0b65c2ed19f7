// Package common defines sentinel errors and constants shared by the portal
// server and client. Callers should match errors with errors.Is.
package common

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Wire-level errors.
	ErrUnknownEvent     = errors.New("unknown event")
	ErrMalformedPayload = errors.New("malformed payload")

	// Client-side intent errors.
	ErrNotJoined    = errors.New("not joined")
	ErrNotConnected = errors.New("not connected")
)
