package domain

import "time"

// Finalization is the audit record of one publish action for a group.
// Destination is set only when the send succeeded; Response keeps the raw
// destination reply either way.
type Finalization struct {
	ID          string
	GroupID     string
	Destination string
	MessageSent bool
	Caption     string
	Response    string
	Notes       string
	FinalizedAt time.Time
}

// FinalizedLink marks a quote entry as newly included in a finalization.
// Carried-forward entries keep their link from the earlier finalization and
// never get a second one.
type FinalizedLink struct {
	FinalizationID string
	QuoteEntryID   string
}
