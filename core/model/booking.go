package model

import "time"

// BookingStatus is the booking-level lifecycle state.
type BookingStatus string

const (
	BookingPending             BookingStatus = "PENDING"
	BookingAwaitingOwner       BookingStatus = "AWAITING_OWNER"
	BookingPendingNoCandidates BookingStatus = "PENDING_NO_CANDIDATES"
	BookingConfirmed           BookingStatus = "CONFIRMED"
	BookingActive              BookingStatus = "ACTIVE"
	BookingCompleted           BookingStatus = "COMPLETED"
	BookingCancelled           BookingStatus = "CANCELLED"
)

// bookingTransitions lists the allowed next states for each state. Moves between
// AWAITING_OWNER and PENDING_NO_CANDIDATES only happen on redispatch.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:             {BookingAwaitingOwner, BookingPendingNoCandidates, BookingCancelled},
	BookingAwaitingOwner:       {BookingAwaitingOwner, BookingPendingNoCandidates, BookingConfirmed, BookingCancelled},
	BookingPendingNoCandidates: {BookingPendingNoCandidates, BookingAwaitingOwner, BookingCancelled},
	BookingConfirmed:           {BookingActive, BookingCompleted},
	BookingActive:              {BookingCompleted},
}

// ParseBookingStatus converts s into a known status.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(s)
	switch st {
	case BookingPending, BookingAwaitingOwner, BookingPendingNoCandidates,
		BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether moving from s to next is allowed.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, st := range bookingTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// Committed reports whether an owner has been bound to the booking.
func (s BookingStatus) Committed() bool {
	return s == BookingConfirmed || s == BookingActive || s == BookingCompleted
}

// Booking is a renter's request to use a piece of equipment.
type Booking struct {
	ID              string        `json:"id"`
	EquipmentID     string        `json:"equipment_id"`
	RenterID        string        `json:"renter_id"`
	OwnerID         string        `json:"owner_id"`
	AcceptedOwnerID string        `json:"accepted_owner_id,omitempty"`
	Status          BookingStatus `json:"status"`
	Location        *GeoPoint     `json:"location,omitempty"`
	Address         string        `json:"address,omitempty"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         *time.Time    `json:"end_date,omitempty"`
	Hours           int           `json:"hours,omitempty"`
	TotalCost       float64       `json:"total_cost"`

	ArrivalEstimate string     `json:"arrival_estimate,omitempty"`
	ArrivalAt       *time.Time `json:"arrival_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// Transition moves the booking to next or returns ErrInvalidTransition.
func (b *Booking) Transition(next BookingStatus) error {
	if !b.Status.CanTransition(next) {
		return &TransitionError{From: b.Status, To: next}
	}
	b.Status = next
	return nil
}

// Role selects which side of a booking an account is on when listing.
type Role string

const (
	RoleRenter   Role = "renter"
	RoleOwner    Role = "owner"
	RoleAccepted Role = "accepted"
	RoleAny      Role = "any"
)

// ParseRole converts s into a Role; the empty string means RoleAny.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleRenter, RoleOwner, RoleAccepted, RoleAny:
		return r, true
	case "":
		return RoleAny, true
	}
	return "", false
}

// Matches reports whether accountID plays role r on b.
func (r Role) Matches(b Booking, accountID string) bool {
	switch r {
	case RoleRenter:
		return b.RenterID == accountID
	case RoleOwner:
		return b.OwnerID == accountID
	case RoleAccepted:
		return b.AcceptedOwnerID == accountID
	default:
		return b.RenterID == accountID || b.OwnerID == accountID || b.AcceptedOwnerID == accountID
	}
}
