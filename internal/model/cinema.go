package model

// Approval states for a cinema.  Only an Approved cinema may receive new
// showtimes; updates and deletes of existing showtimes stay allowed so an
// organizer can wind down a revoked cinema.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Cinema groups auditoriums under one organizer.  OrganizerID is the
// opaque principal id of the creator and is never rewritten after insert.
type Cinema struct {
	ID             string `json:"id"`
	OrganizerID    string `json:"organizer_id"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	ContactEmail   string `json:"contact_email"`
	ApprovalStatus string `json:"approval_status"`
	Audit
}
