package application

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNothingPending    = errors.New("nothing pending")
	ErrPublishInFlight   = errors.New("publish already in flight for group")
	ErrSyncNotConfigured = errors.New("rate sync endpoint or credential missing")
)
