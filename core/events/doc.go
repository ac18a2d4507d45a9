// Package events defines the booking events emitted on the event bus after a
// store transaction commits.
//
// Available kinds:
//   - booking_created: a booking and its candidate pool were persisted
//   - candidates_dispatched: the pool was broadcast (also on redispatch)
//   - booking_confirmed: an owner won the accept race
//   - candidate_expired: open siblings were closed by a confirmation
//   - candidate_rejected: an owner declined
//   - booking_cancelled: the renter withdrew
//   - booking_status_changed: start, complete and arrival updates
package events
