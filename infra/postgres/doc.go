// Package postgres implements the booking store and the account directory on
// PostgreSQL with pgx and scany.
//
// Accept relies on two guards inside one read-committed transaction: the
// booking row is locked with SELECT ... FOR UPDATE, and the owner is bound with
// an UPDATE conditioned on accepted_owner_id IS NULL.
package postgres
