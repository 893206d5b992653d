// Package domain contains domain errors used throughout the application.
package domain

import "errors"

// Sentinel errors for common error conditions.
var (
	ErrPathOutsideRoot  = errors.New("path is outside project root")
	ErrHubNotRunning    = errors.New("event hub is not running")
	ErrSubscriberClosed = errors.New("subscriber is closed")
)
