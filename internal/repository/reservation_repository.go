package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

// ReservationRepo provides transactional access to the reservations table.
// Reference days are stored in DATE columns and timestamps in UTC DATETIME
// columns; both are converted back into the lab timezone when scanned.
type ReservationRepo struct {
	db  *sql.DB
	loc *time.Location
}

// NewReservationRepo returns a ReservationRepo bound to db. loc is the lab
// timezone used to rebuild reference days and timestamps.
func NewReservationRepo(db *sql.DB, loc *time.Location) *ReservationRepo {
	return &ReservationRepo{db: db, loc: loc}
}

// DB exposes the underlying pool.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `r.id, r.user_id, u.student_id, r.seat_id, r.ref_date, r.start_hour, r.end_hour,
                            r.status, r.checkout_at, r.extension_count, r.extended_at, r.created_at`

const reservationFrom = ` FROM reservations r JOIN users u ON u.id = r.user_id `

// WithTx runs fn inside a database transaction.
func (r *ReservationRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()
	if err := fn(ctx, &mysqlTx{tx: sqlTx, loc: r.loc}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByDay returns reservations for the availability views ordered by seat
// and start hour.
func (r *ReservationRepo) ListByDay(ctx context.Context, q DayQuery) ([]model.Reservation, error) {
	var b strings.Builder
	b.WriteString("SELECT " + reservationColumns + reservationFrom + "WHERE r.ref_date = ?")
	args := []any{q.Day.Format(clock.DateLayout)}
	if q.SeatID != 0 {
		b.WriteString(" AND r.seat_id = ?")
		args = append(args, q.SeatID)
	}
	if q.IncludeCheckedOut {
		b.WriteString(" AND (r.status = 'ACTIVE' OR (r.status = 'EXPIRED' AND r.checkout_at IS NOT NULL))")
	} else {
		b.WriteString(" AND r.status = 'ACTIVE'")
	}
	b.WriteString(" ORDER BY r.seat_id, r.start_hour")
	return queryReservations(ctx, r.db, r.loc, b.String(), args...)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryReservations(ctx context.Context, q queryer, loc *time.Location, query string, args ...any) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(s scanner, loc *time.Location) (*model.Reservation, error) {
	var (
		res        model.Reservation
		refDate    time.Time
		checkoutAt sql.NullTime
		extendedAt sql.NullTime
	)
	if err := s.Scan(
		&res.ID, &res.UserID, &res.StudentID, &res.SeatID, &refDate, &res.StartHour, &res.EndHour,
		&res.Status, &checkoutAt, &res.ExtensionCount, &extendedAt, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	res.RefDate = clock.DateIn(refDate, loc)
	res.CreatedAt = res.CreatedAt.In(loc)
	if checkoutAt.Valid {
		t := checkoutAt.Time.In(loc)
		res.CheckoutAt = &t
	}
	if extendedAt.Valid {
		t := extendedAt.Time.In(loc)
		res.ExtendedAt = &t
	}
	return &res, nil
}

// mysqlTx implements Tx on a *sql.Tx. Row locks come from SELECT ... FOR
// UPDATE on the users and seats rows and are released on commit/rollback.
type mysqlTx struct {
	tx  *sql.Tx
	loc *time.Location
}

func (t *mysqlTx) lockRow(ctx context.Context, query string, id any) error {
	var got any
	err := t.tx.QueryRowContext(ctx, query, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (t *mysqlTx) LockStudent(ctx context.Context, userID uint64) error {
	return t.lockRow(ctx, "SELECT id FROM users WHERE id = ? FOR UPDATE", userID)
}

func (t *mysqlTx) LockSeat(ctx context.Context, seatID int) error {
	return t.lockRow(ctx, "SELECT id FROM seats WHERE id = ? FOR UPDATE", seatID)
}

func (t *mysqlTx) HasOpenReservationOnDay(ctx context.Context, userID uint64, day time.Time) (bool, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE user_id = ? AND ref_date = ? AND status <> 'CANCELLED'",
		userID, day.Format(clock.DateLayout)).Scan(&n)
	return n > 0, err
}

func (t *mysqlTx) FindActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	row := t.tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+reservationFrom+
			"WHERE r.user_id = ? AND r.status = 'ACTIVE' ORDER BY r.ref_date DESC, r.id DESC LIMIT 1",
		userID)
	res, err := scanReservation(row, t.loc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (t *mysqlTx) findByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+reservationColumns+reservationFrom+"WHERE r.id = ?", id)
	res, err := scanReservation(row, t.loc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (t *mysqlTx) ListBySeatAndDay(ctx context.Context, seatID int, day time.Time, status model.Status, excludeID uint64) ([]model.Reservation, error) {
	return queryReservations(ctx, t.tx, t.loc,
		"SELECT "+reservationColumns+reservationFrom+
			"WHERE r.seat_id = ? AND r.ref_date = ? AND r.status = ? AND r.id <> ? ORDER BY r.start_hour",
		seatID, day.Format(clock.DateLayout), status, excludeID)
}

// CreateReservation inserts res and reloads it so the generated id,
// timestamps and the owner's student id are populated.
func (t *mysqlTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, seat_id, ref_date, start_hour, end_hour, status)
               VALUES (?, ?, ?, ?, ?, ?)`
	result, err := t.tx.ExecContext(ctx, q,
		res.UserID, res.SeatID, res.RefDate.Format(clock.DateLayout), res.StartHour, res.EndHour, res.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateDaily
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := t.findByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

func (t *mysqlTx) UpdateReservation(ctx context.Context, id uint64, p ReservationPatch) (*model.Reservation, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if p.EndHour != nil {
		sets = append(sets, "end_hour = ?")
		args = append(args, *p.EndHour)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if p.CheckoutAt != nil {
		sets = append(sets, "checkout_at = ?")
		args = append(args, p.CheckoutAt.UTC())
	}
	if p.ExtendedAt != nil {
		sets = append(sets, "extended_at = ?")
		args = append(args, p.ExtendedAt.UTC())
	}
	if p.ExtensionCount != nil {
		sets = append(sets, "extension_count = ?")
		args = append(args, *p.ExtensionCount)
	}
	if len(sets) == 0 {
		return t.findByID(ctx, id)
	}
	args = append(args, id)
	q := "UPDATE reservations SET " + strings.Join(sets, ", ") + " WHERE id = ? AND status = 'ACTIVE'"
	result, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return t.findByID(ctx, id)
}

// ListExpirable locks the matched reservation rows so that overlapping
// sweeps serialise and the second one finds nothing left to expire.
func (t *mysqlTx) ListExpirable(ctx context.Context, day time.Time, currentHour int) ([]model.Reservation, error) {
	return queryReservations(ctx, t.tx, t.loc,
		"SELECT "+reservationColumns+reservationFrom+
			`WHERE r.ref_date = ? AND r.status = 'ACTIVE' AND r.checkout_at IS NULL AND r.end_hour < ?
             ORDER BY r.id FOR UPDATE OF r`,
		day.Format(clock.DateLayout), currentHour)
}

func (t *mysqlTx) BulkExpire(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := "UPDATE reservations SET status = 'EXPIRED' WHERE status = 'ACTIVE' AND id IN ("
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteStudent removes the user row; the reservation history goes with it
// through ON DELETE CASCADE.
func (t *mysqlTx) DeleteStudent(ctx context.Context, userID uint64) error {
	result, err := t.tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
