package model

import "time"

// CandidateStatus is the per-owner invitation state. It only moves forward.
type CandidateStatus string

const (
	CandidatePending  CandidateStatus = "PENDING"
	CandidateNotified CandidateStatus = "NOTIFIED"
	CandidateAccepted CandidateStatus = "ACCEPTED"
	CandidateRejected CandidateStatus = "REJECTED"
	CandidateExpired  CandidateStatus = "EXPIRED"
)

// ParseCandidateStatus converts s into a known status.
func ParseCandidateStatus(s string) (CandidateStatus, bool) {
	st := CandidateStatus(s)
	switch st {
	case CandidatePending, CandidateNotified, CandidateAccepted, CandidateRejected, CandidateExpired:
		return st, true
	}
	return "", false
}

// Terminal reports whether the candidate can no longer change.
func (s CandidateStatus) Terminal() bool {
	return s == CandidateAccepted || s == CandidateRejected || s == CandidateExpired
}

// Open reports whether the candidate may still respond.
func (s CandidateStatus) Open() bool {
	return s == CandidatePending || s == CandidateNotified
}

// Candidate is an owner invited to fulfil a specific booking.
type Candidate struct {
	ID          string          `json:"id"`
	BookingID   string          `json:"booking_id"`
	OwnerID     string          `json:"owner_id"`
	DistanceKm  float64         `json:"distance_km"`
	Status      CandidateStatus `json:"status"`
	InvitedAt   time.Time       `json:"invited_at"`
	RespondedAt *time.Time      `json:"responded_at,omitempty"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty"`
	ExpiredAt   *time.Time      `json:"expired_at,omitempty"`
}

// DistanceKnown reports whether DistanceKm holds a real distance.
func (c Candidate) DistanceKnown() bool { return c.DistanceKm >= 0 }

// Accept marks the candidate as the winner.
func (c *Candidate) Accept(now time.Time) error {
	if c.Status.Terminal() {
		return ErrInvalidCandidateState
	}
	c.Status = CandidateAccepted
	c.AcceptedAt = &now
	c.RespondedAt = &now
	return nil
}

// Reject records the owner's refusal.
func (c *Candidate) Reject(now time.Time) error {
	if c.Status.Terminal() {
		return ErrInvalidCandidateState
	}
	c.Status = CandidateRejected
	c.RespondedAt = &now
	return nil
}

// Expire closes an open candidate because the booking was decided elsewhere.
func (c *Candidate) Expire(now time.Time) error {
	if c.Status.Terminal() {
		return ErrInvalidCandidateState
	}
	c.Status = CandidateExpired
	c.ExpiredAt = &now
	return nil
}
