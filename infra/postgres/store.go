package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/store"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	pgxscan.Querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	reader
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, reader: reader{q: pool}}
}

// InTx runs fn in a read-committed transaction, rolled back when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&pgTx{reader: reader{q: tx}, tx: tx}); err != nil {
		if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", mapErr(err))
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type reader struct {
	q querier
}

func (r reader) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	return r.getBooking(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r reader) getBooking(ctx context.Context, query, id string) (model.Booking, error) {
	var row bookingRow
	if err := pgxscan.Get(ctx, r.q, &row, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return model.Booking{}, fmt.Errorf("%w: %s", model.ErrBookingNotFound, id)
		}
		return model.Booking{}, fmt.Errorf("get booking %s: %w", id, err)
	}
	return row.model(), nil
}

func (r reader) GetCandidate(ctx context.Context, id string) (model.Candidate, error) {
	var row candidateRow
	err := pgxscan.Get(ctx, r.q, &row, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return model.Candidate{}, fmt.Errorf("%w: %s", model.ErrCandidateNotFound, id)
		}
		return model.Candidate{}, fmt.Errorf("get candidate %s: %w", id, err)
	}
	return row.model(), nil
}

func (r reader) ListCandidates(ctx context.Context, f store.CandidateFilter) ([]model.Candidate, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.BookingID != "" {
		add("booking_id = $%d", f.BookingID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	query := `SELECT ` + candidateColumns + ` FROM candidates`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY invited_at DESC, id ASC`
	var rows []candidateRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return mapRows[candidateRow, model.Candidate](rows), nil
}

func (r reader) ListBookings(ctx context.Context, f store.BookingFilter) ([]model.Booking, error) {
	var who string
	switch f.Role {
	case model.RoleRenter:
		who = "renter_id = $1"
	case model.RoleOwner:
		who = "owner_id = $1"
	case model.RoleAccepted:
		who = "accepted_owner_id = $1"
	default:
		who = "(renter_id = $1 OR owner_id = $1 OR accepted_owner_id = $1)"
	}
	args := []any{f.AccountID}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + who
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += ` AND status = $2`
	}
	query += ` ORDER BY created_at DESC, id ASC`
	var rows []bookingRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return mapRows[bookingRow, model.Booking](rows), nil
}

type pgTx struct {
	reader
	tx pgx.Tx
}

func (t *pgTx) LockBooking(ctx context.Context, id string) (model.Booking, error) {
	b, err := t.getBooking(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return model.Booking{}, fmt.Errorf("lock booking %s: %w", id, err)
	}
	return b, nil
}

func (t *pgTx) InsertBooking(ctx context.Context, b model.Booking) error {
	lat, lon := coords(b.Location)
	_, err := t.tx.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		b.ID, b.EquipmentID, b.RenterID, b.OwnerID, nullable(b.AcceptedOwnerID), string(b.Status),
		lat, lon, b.Address, b.StartDate, b.EndDate, b.Hours, b.TotalCost,
		b.ArrivalEstimate, b.ArrivalAt, b.CreatedAt, b.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("insert booking %s: %w", b.ID, mapErr(err))
	}
	return nil
}

func (t *pgTx) InsertCandidates(ctx context.Context, cs []model.Candidate) error {
	if len(cs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range cs {
		batch.Queue(`INSERT INTO candidates (`+candidateColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.ID, c.BookingID, c.OwnerID, c.DistanceKm, string(c.Status), c.InvitedAt,
			c.RespondedAt, c.AcceptedAt, c.ExpiredAt)
	}
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert candidates: %w", mapErr(err))
	}
	return nil
}

func (t *pgTx) UpdateBooking(ctx context.Context, b model.Booking) error {
	lat, lon := coords(b.Location)
	tag, err := t.tx.Exec(ctx, `UPDATE bookings SET status = $2, latitude = $3, longitude = $4,
		address = $5, start_date = $6, end_date = $7, hours = $8, total_cost = $9,
		arrival_estimate = $10, arrival_at = $11
		WHERE id = $1`,
		b.ID, string(b.Status), lat, lon, b.Address, b.StartDate, b.EndDate, b.Hours, b.TotalCost,
		b.ArrivalEstimate, b.ArrivalAt)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", model.ErrBookingNotFound, b.ID)
	}
	return nil
}

func (t *pgTx) ConfirmBooking(ctx context.Context, bookingID, ownerID string, at time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx, `UPDATE bookings
		SET accepted_owner_id = $2, status = $3, confirmed_at = $4
		WHERE id = $1 AND accepted_owner_id IS NULL`,
		bookingID, ownerID, string(model.BookingConfirmed), at)
	if err != nil {
		return false, fmt.Errorf("confirm booking %s: %w", bookingID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) UpdateCandidate(ctx context.Context, c model.Candidate) error {
	tag, err := t.tx.Exec(ctx, `UPDATE candidates SET status = $2, distance_km = $3,
		responded_at = $4, accepted_at = $5, expired_at = $6
		WHERE id = $1`,
		c.ID, string(c.Status), c.DistanceKm, c.RespondedAt, c.AcceptedAt, c.ExpiredAt)
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", model.ErrCandidateNotFound, c.ID)
	}
	return nil
}

func (t *pgTx) ExpireOpenCandidates(ctx context.Context, bookingID, exceptID string, at time.Time) ([]model.Candidate, error) {
	var rows []candidateRow
	err := pgxscan.Select(ctx, t.q, &rows, `UPDATE candidates SET status = $3, expired_at = $4
		WHERE booking_id = $1 AND id <> $2 AND status IN ($5, $6)
		RETURNING `+candidateColumns,
		bookingID, exceptID, string(model.CandidateExpired), at,
		string(model.CandidatePending), string(model.CandidateNotified))
	if err != nil {
		return nil, fmt.Errorf("expire candidates of %s: %w", bookingID, err)
	}
	return mapRows[candidateRow, model.Candidate](rows), nil
}
