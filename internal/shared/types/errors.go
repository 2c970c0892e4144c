package types

import (
	"errors"
)

// Common errors
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUnknownParameter   = errors.New("unknown parameter")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrSnapshotCorrupt    = errors.New("snapshot corrupt")
	ErrBackendUnavailable = errors.New("backend unavailable on this platform")
)

// Error codes used in API responses
const (
	ErrCodeProfileNotFound = "PROFILE_NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeRateLimited     = "RATE_LIMITED"
)
