// Package model defines the booking and candidate entities, their status enums
// and the error taxonomy shared by every rentmatch component.
//
// A Booking is created once per rental request. Its candidate set is built in
// the same transaction and never regenerated. Candidates only move forward:
//
//	PENDING -> NOTIFIED -> {ACCEPTED, REJECTED, EXPIRED}
//
// Bookings follow the lifecycle encoded in bookingTransitions:
//
//	PENDING -> {AWAITING_OWNER, PENDING_NO_CANDIDATES} -> CONFIRMED -> {ACTIVE, COMPLETED}
//
// with CANCELLED reachable from any state before CONFIRMED.
package model
